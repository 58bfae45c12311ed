package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmarsh/schemaplan/internal/schema"
)

func TestMapColumnBuiltins(t *testing.T) {
	tests := []struct {
		name   string
		engine Engine
		col    schema.Column
		want   string
	}{
		{"postgres integer", Postgres, schema.Column{Name: "id", Type: schema.TypeInteger}, "integer"},
		{"postgres boolean", Postgres, schema.Column{Name: "is_adult", Type: schema.TypeBoolean}, "boolean"},
		{"postgres real", Postgres, schema.Column{Name: "rating", Type: schema.TypeReal}, "real"},
		{"postgres varchar", Postgres, schema.Column{Name: "title", Type: schema.TypeCharacter, MaxCharLength: 512}, "character varying(512)"},
		{"postgres over-length falls back to text", Postgres, schema.Column{Name: "blob", Type: schema.TypeCharacter, MaxCharLength: 20000000}, "text"},
		{"redshift varchar at bound", Redshift, schema.Column{Name: "t", Type: schema.TypeCharacter, MaxCharLength: 65535}, "character varying(65535)"},
		{"mysql integer", MySQL, schema.Column{Name: "id", Type: schema.TypeInteger}, "int"},
		{"mysql real", MySQL, schema.Column{Name: "r", Type: schema.TypeReal}, "float"},
		{"mysql over-length falls back to text", MySQL, schema.Column{Name: "t", Type: schema.TypeCharacter, MaxCharLength: 60000}, "text"},
		{"sqlite boolean uses fallback", SQLite, schema.Column{Name: "b", Type: schema.TypeBoolean}, "integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.engine.MapColumn(tt.col)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapColumnIsDeterministic(t *testing.T) {
	col := schema.Column{Name: "title", Type: schema.TypeCharacter, MaxCharLength: 256}
	first, err := Redshift.MapColumn(col)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Redshift.MapColumn(col)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMapColumnOverLengthWithoutFallback(t *testing.T) {
	// A warehouse engine bounded at 1300 with no unbounded text type must
	// reject a 1400-character column, naming the column and both lengths.
	warehouse := Engine{
		Name: "warehouse",
		Types: map[schema.DataType]string{
			schema.TypeCharacter: "varchar",
		},
		MaxCharLength: 1300,
	}

	_, err := warehouse.MapColumn(schema.Column{
		Name: "plot_summary", Type: schema.TypeCharacter, MaxCharLength: 1400,
	})

	var constraint *TypeConstraintError
	require.ErrorAs(t, err, &constraint)
	assert.Equal(t, "plot_summary", constraint.Column)
	assert.Equal(t, 1400, constraint.Length)
	assert.Equal(t, 1300, constraint.MaxLength)
	assert.Contains(t, err.Error(), "plot_summary")
	assert.Contains(t, err.Error(), "1400")
	assert.Contains(t, err.Error(), "1300")
}

func TestMapColumnUnsupportedType(t *testing.T) {
	noBool := Engine{
		Name: "nobool",
		Types: map[schema.DataType]string{
			schema.TypeInteger: "integer",
		},
	}

	_, err := noBool.MapColumn(schema.Column{Name: "b", Type: schema.TypeBoolean})
	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "nobool", unsupported.Engine)
	assert.Equal(t, schema.TypeBoolean, unsupported.Type)

	// With a fallback configured the same column maps cleanly.
	noBool.Fallbacks = map[schema.DataType]string{schema.TypeBoolean: "smallint"}
	got, err := noBool.MapColumn(schema.Column{Name: "b", Type: schema.TypeBoolean})
	require.NoError(t, err)
	assert.Equal(t, "smallint", got)
}

func TestMapColumnUnknownType(t *testing.T) {
	_, err := Postgres.MapColumn(schema.Column{Name: "c", Type: "timestamp"})
	var unknown *schema.UnknownTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "timestamp", unknown.Type)
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		e, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, e.Name)
	}

	_, err := ByName("oracle")
	require.Error(t, err)
	assert.Equal(t, []string{"mysql", "postgres", "redshift", "sqlite"}, Names())
}
