package schema

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const movieDoc = `{
  "name": "movies",
  "tables": [
    {
      "name": "title",
      "columns": [
        {"name": "id", "dtype": "integer", "is_primary_key": true, "is_unique": false, "is_not_null": true, "max_char_length": null},
        {"name": "primary_title", "dtype": "character varying", "is_primary_key": false, "is_unique": false, "is_not_null": true, "max_char_length": 512},
        {"name": "is_adult", "dtype": "boolean", "is_primary_key": false, "is_unique": false, "is_not_null": true, "max_char_length": null},
        {"name": "rating", "dtype": "real", "is_primary_key": false, "is_unique": false, "is_not_null": false, "max_char_length": null}
      ]
    },
    {
      "name": "episode",
      "columns": [
        {"name": "title_id", "dtype": "integer", "is_primary_key": true, "is_unique": false, "is_not_null": true, "max_char_length": null},
        {"name": "parent_title_id", "dtype": "integer", "is_primary_key": false, "is_unique": false, "is_not_null": true, "max_char_length": null}
      ]
    }
  ],
  "relationships": [
    ["episode", "title_id", "title", "id"],
    ["episode", "parent_title_id", "title", "id"]
  ]
}`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(movieDoc))
	require.NoError(t, err)

	assert.Equal(t, "movies", s.Name)
	require.Len(t, s.Tables, 2)

	title, ok := s.Table("title")
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, title.PrimaryKey)
	assert.Equal(t, []string{"id", "primary_title", "is_adult", "rating"}, title.ColumnNames())

	id, ok := title.Column("id")
	require.True(t, ok)
	assert.Equal(t, TypeInteger, id.Type)
	assert.False(t, id.Nullable)
	assert.True(t, id.Unique)

	pt, ok := title.Column("primary_title")
	require.True(t, ok)
	assert.Equal(t, TypeCharacter, pt.Type)
	assert.Equal(t, 512, pt.MaxCharLength)

	rating, ok := title.Column("rating")
	require.True(t, ok)
	assert.True(t, rating.Nullable)

	episode, ok := s.Table("episode")
	require.True(t, ok)
	require.Len(t, episode.ForeignKeys, 2)
	assert.Equal(t, "title", episode.ForeignKeys[0].RefTable)
	assert.Equal(t, []string{"parent_title_id"}, episode.ForeignKeys[1].Columns)
	assert.Equal(t, []string{"title"}, episode.References())
}

func TestLoadRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown field",
			doc:  `{"name": "x", "tables": [], "relationships": [], "extra": 1}`,
		},
		{
			name: "missing schema name",
			doc:  `{"tables": [], "relationships": []}`,
		},
		{
			name: "unknown dtype",
			doc: `{"name": "x", "tables": [{"name": "t", "columns": [
				{"name": "c", "dtype": "jsonb", "is_primary_key": false, "is_unique": false, "is_not_null": false, "max_char_length": null}
			]}], "relationships": []}`,
		},
		{
			name: "character without max length",
			doc: `{"name": "x", "tables": [{"name": "t", "columns": [
				{"name": "c", "dtype": "character varying", "is_primary_key": false, "is_unique": false, "is_not_null": false, "max_char_length": null}
			]}], "relationships": []}`,
		},
		{
			name: "relationship tuple with wrong arity",
			doc: `{"name": "x", "tables": [{"name": "t", "columns": [
				{"name": "c", "dtype": "integer", "is_primary_key": true, "is_unique": false, "is_not_null": true, "max_char_length": null}
			]}], "relationships": [["t", "c", "t"]]}`,
		},
		{
			name: "relationship naming unknown owning table",
			doc: `{"name": "x", "tables": [{"name": "t", "columns": [
				{"name": "c", "dtype": "integer", "is_primary_key": true, "is_unique": false, "is_not_null": true, "max_char_length": null}
			]}], "relationships": [["missing", "c", "t", "c"]]}`,
		},
		{
			name: "table with no columns",
			doc:  `{"name": "x", "tables": [{"name": "t", "columns": []}], "relationships": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestParseDataTypeAliases(t *testing.T) {
	tests := []struct {
		in   string
		want DataType
	}{
		{"integer", TypeInteger},
		{"pg_catalog.int4", TypeInteger},
		{"character varying", TypeCharacter},
		{"varchar", TypeCharacter},
		{"boolean", TypeBoolean},
		{"pg_catalog.bool", TypeBoolean},
		{"real", TypeReal},
		{"float4", TypeReal},
	}
	for _, tt := range tests {
		got, err := ParseDataType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDataType("timestamp")
	var unknown *UnknownTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "timestamp", unknown.Type)
}

func TestDumpIsDeterministic(t *testing.T) {
	s, err := Load(strings.NewReader(movieDoc))
	require.NoError(t, err)

	var first, second bytes.Buffer
	require.NoError(t, Dump(&first, s))
	require.NoError(t, Dump(&second, s))
	assert.Equal(t, first.String(), second.String())

	// Relationships serialize sorted, so a reloaded schema dumps
	// identically.
	reloaded, err := Load(&first)
	require.NoError(t, err)
	var third bytes.Buffer
	require.NoError(t, Dump(&third, reloaded))
	assert.Equal(t, second.String(), third.String())
}

func TestValidate(t *testing.T) {
	base := func() *Schema {
		s, err := Load(strings.NewReader(movieDoc))
		require.NoError(t, err)
		return s
	}

	t.Run("valid schema passes", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("duplicate table", func(t *testing.T) {
		s := base()
		s.Tables = append(s.Tables, Table{Name: "title", Columns: []Column{{Name: "id", Type: TypeInteger}}})
		var dup *DuplicateTableError
		err := s.Validate()
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "title", dup.Table)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("duplicate column", func(t *testing.T) {
		s := base()
		title, _ := s.Table("title")
		title.Columns = append(title.Columns, Column{Name: "id", Type: TypeInteger})
		var dup *DuplicateColumnError
		require.ErrorAs(t, s.Validate(), &dup)
		assert.Equal(t, "title", dup.Table)
		assert.Equal(t, "id", dup.Column)
	})

	t.Run("dangling reference", func(t *testing.T) {
		s := base()
		episode, _ := s.Table("episode")
		episode.ForeignKeys[0].RefTable = "series"
		var dangling *DanglingReferenceError
		require.ErrorAs(t, s.Validate(), &dangling)
		assert.Equal(t, "episode", dangling.Table)
		assert.Equal(t, "series", dangling.RefTable)
	})

	t.Run("referenced columns must form a key", func(t *testing.T) {
		s := base()
		episode, _ := s.Table("episode")
		episode.ForeignKeys[0].RefColumns = []string{"primary_title"}
		var invalid *InvalidReferenceKeyError
		require.ErrorAs(t, s.Validate(), &invalid)
		assert.Equal(t, "title", invalid.RefTable)
	})

	t.Run("referenced column must exist", func(t *testing.T) {
		s := base()
		episode, _ := s.Table("episode")
		episode.ForeignKeys[0].RefColumns = []string{"uuid"}
		var invalid *InvalidReferenceKeyError
		require.ErrorAs(t, s.Validate(), &invalid)
	})

	t.Run("column count mismatch", func(t *testing.T) {
		s := base()
		episode, _ := s.Table("episode")
		episode.ForeignKeys[0].RefColumns = []string{"id", "primary_title"}
		var invalid *InvalidReferenceKeyError
		require.ErrorAs(t, s.Validate(), &invalid)
	})

	t.Run("local column must exist", func(t *testing.T) {
		s := base()
		episode, _ := s.Table("episode")
		episode.ForeignKeys[0].Columns = []string{"nope"}
		err := s.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("unique column is a valid reference key", func(t *testing.T) {
		s := base()
		title, _ := s.Table("title")
		for i := range title.Columns {
			if title.Columns[i].Name == "primary_title" {
				title.Columns[i].Unique = true
			}
		}
		episode, _ := s.Table("episode")
		episode.ForeignKeys[0].RefColumns = []string{"primary_title"}
		require.NoError(t, s.Validate())
	})
}

func TestBuildGraph(t *testing.T) {
	s, err := Load(strings.NewReader(movieDoc))
	require.NoError(t, err)

	g, err := BuildGraph(s)
	require.NoError(t, err)

	assert.Equal(t, []string{"episode", "title"}, g.Nodes())
	assert.True(t, g.HasEdge("episode", "title"))
	assert.False(t, g.HasEdge("title", "episode"))
}

func TestBuildGraphRejectsInvalidSchema(t *testing.T) {
	s := &Schema{Name: "x", Tables: []Table{
		{Name: "a", Columns: []Column{{Name: "id", Type: TypeInteger, Unique: true}},
			ForeignKeys: []ForeignKey{{Columns: []string{"id"}, RefTable: "missing", RefColumns: []string{"id"}}}},
	}}
	_, err := BuildGraph(s)
	require.Error(t, err)
	var dangling *DanglingReferenceError
	assert.True(t, errors.As(err, &dangling))
}
