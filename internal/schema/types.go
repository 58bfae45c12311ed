// Package schema defines the logical schema model: tables, typed columns,
// and the foreign-key relationships between them. A Schema is decoded from a
// JSON schema document, validated into a strict closed set of types, and then
// handed to the planner for dependency ordering.
package schema

import "fmt"

// DataType is a logical, engine-independent column type. The set is closed:
// anything outside it is rejected at the document boundary.
type DataType string

const (
	TypeInteger   DataType = "integer"
	TypeCharacter DataType = "character varying"
	TypeBoolean   DataType = "boolean"
	TypeReal      DataType = "real"
)

// dataTypeAliases maps the dtype spellings accepted in schema documents to
// their DataType, including the internal catalog names Postgres reports.
var dataTypeAliases = map[string]DataType{
	"integer":            TypeInteger,
	"int":                TypeInteger,
	"pg_catalog.int4":    TypeInteger,
	"character varying":  TypeCharacter,
	"character":          TypeCharacter,
	"varchar":            TypeCharacter,
	"pg_catalog.varchar": TypeCharacter,
	"boolean":            TypeBoolean,
	"bool":               TypeBoolean,
	"pg_catalog.bool":    TypeBoolean,
	"real":               TypeReal,
	"float4":             TypeReal,
	"pg_catalog.float4":  TypeReal,
}

// ParseDataType resolves a dtype string from a schema document into a
// DataType. Unrecognized names are a configuration error, never a
// pass-through.
func ParseDataType(s string) (DataType, error) {
	if dt, ok := dataTypeAliases[s]; ok {
		return dt, nil
	}
	return "", &UnknownTypeError{Type: s}
}

// Column is a single column of a table. Character columns must carry a
// positive MaxCharLength; it is ignored for every other type.
type Column struct {
	Name          string
	Type          DataType
	MaxCharLength int
	Nullable      bool
	Unique        bool
}

// ForeignKey is an ordered mapping from columns of the owning table to the
// columns of a referenced table. Local and referenced column counts must
// match, and the referenced columns must form the primary key or a declared
// unique key on the referenced table.
type ForeignKey struct {
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
}

// ConstraintName returns the explicit constraint name, or the Postgres-style
// default <table>_<col1>_fkey when none was declared.
func (fk ForeignKey) ConstraintName(table string) string {
	if fk.Name != "" {
		return fk.Name
	}
	return fmt.Sprintf("%s_%s_fkey", table, fk.Columns[0])
}

// Table is a named, ordered sequence of columns plus key constraints.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

// Column returns the column with the given name, or false if the table has
// no such column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in stored order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// References returns the names of the tables this table's foreign keys point
// at, deduplicated, in declaration order. A self-reference is included.
func (t *Table) References() []string {
	var out []string
	seen := make(map[string]bool)
	for _, fk := range t.ForeignKeys {
		if !seen[fk.RefTable] {
			seen[fk.RefTable] = true
			out = append(out, fk.RefTable)
		}
	}
	return out
}

// Schema is a named set of tables. The induced dependency edges (owning
// table -> referenced table) are derived from the foreign keys; use
// BuildGraph to materialize them.
type Schema struct {
	Name   string
	Tables []Table
}

// Table returns the table with the given name, or false if the schema has no
// such table.
func (s *Schema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// TableNames returns the table names in declaration order.
func (s *Schema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i := range s.Tables {
		names[i] = s.Tables[i].Name
	}
	return names
}
