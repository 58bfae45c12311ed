// Package ddl renders CREATE TABLE and DROP TABLE statements for one target
// engine. Emission is pure text generation; executing the statements is the
// caller's concern. CREATE statements must be consumed in creation-plan
// order so that every foreign key references an already-created table, and
// DROP statements in the exact reverse.
package ddl

import (
	"fmt"
	"io"
	"strings"

	"github.com/calmarsh/schemaplan/internal/engine"
	"github.com/calmarsh/schemaplan/internal/schema"
)

// Emitter renders DDL for a single engine.
type Emitter struct {
	engine engine.Engine
}

// NewEmitter creates a DDL emitter for the given engine.
func NewEmitter(e engine.Engine) *Emitter {
	return &Emitter{engine: e}
}

// CreateTable renders the CREATE TABLE statement for one table. Columns
// appear in stored order with their mapped physical types; a single-column
// primary key is declared inline, a composite one as a named table-level
// constraint; every foreign key becomes a named table-level constraint.
func (em *Emitter) CreateTable(t *schema.Table) (string, error) {
	inlinePK := ""
	if len(t.PrimaryKey) == 1 {
		inlinePK = t.PrimaryKey[0]
	}

	var defs []string
	for _, col := range t.Columns {
		phys, err := em.engine.MapColumn(col)
		if err != nil {
			return "", fmt.Errorf("table `%s`: %w", t.Name, err)
		}

		parts := []string{col.Name, phys}
		switch {
		case col.Name == inlinePK:
			parts = append(parts, "PRIMARY KEY")
		default:
			if col.Unique {
				parts = append(parts, "UNIQUE")
			}
			if !col.Nullable {
				parts = append(parts, "NOT NULL")
			}
		}
		defs = append(defs, strings.Join(parts, " "))
	}

	if len(t.PrimaryKey) > 1 {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s_pkey PRIMARY KEY (%s)",
			t.Name, strings.Join(t.PrimaryKey, ", ")))
	}

	for _, fk := range t.ForeignKeys {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			fk.ConstraintName(t.Name),
			strings.Join(fk.Columns, ", "),
			fk.RefTable,
			strings.Join(fk.RefColumns, ", ")))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s (\n", t.Name)
	for i, def := range defs {
		sep := ","
		if i == len(defs)-1 {
			sep = ""
		}
		fmt.Fprintf(&sb, "    %s%s\n", def, sep)
	}
	sb.WriteString(");")
	return sb.String(), nil
}

// DropTable renders the idempotent DROP statement for one table.
func (em *Emitter) DropTable(name string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", name)
}

// WriteCreateScript writes the CREATE statements for the schema's tables in
// the given creation order, one statement per block.
func (em *Emitter) WriteCreateScript(w io.Writer, s *schema.Schema, creationOrder []string) error {
	for i, name := range creationOrder {
		t, ok := s.Table(name)
		if !ok {
			return fmt.Errorf("creation order names unknown table `%s`", name)
		}
		stmt, err := em.CreateTable(t)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, stmt); err != nil {
			return err
		}
	}
	return nil
}

// WriteDropScript writes the DROP statements in the given drop order, which
// must be the exact reverse of the creation order.
func (em *Emitter) WriteDropScript(w io.Writer, dropOrder []string) error {
	for _, name := range dropOrder {
		if _, err := fmt.Fprintln(w, em.DropTable(name)); err != nil {
			return err
		}
	}
	return nil
}

// CreateStatements renders the CREATE statement for every table in creation
// order.
func (em *Emitter) CreateStatements(s *schema.Schema, creationOrder []string) ([]string, error) {
	stmts := make([]string, 0, len(creationOrder))
	for _, name := range creationOrder {
		t, ok := s.Table(name)
		if !ok {
			return nil, fmt.Errorf("creation order names unknown table `%s`", name)
		}
		stmt, err := em.CreateTable(t)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// DropStatements renders the DROP statement for every table in drop order.
func (em *Emitter) DropStatements(dropOrder []string) []string {
	stmts := make([]string, 0, len(dropOrder))
	for _, name := range dropOrder {
		stmts = append(stmts, em.DropTable(name))
	}
	return stmts
}
