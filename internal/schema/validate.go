package schema

import "fmt"

// Validate checks the schema description for structural defects: duplicate
// names, dangling references, and foreign keys that do not line up with a
// key on the referenced table. It does not check for dependency cycles;
// whether a cycle is acceptable is an ordering policy, decided by the
// planner.
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Tables))
	for i := range s.Tables {
		if seen[s.Tables[i].Name] {
			return &DuplicateTableError{Table: s.Tables[i].Name}
		}
		seen[s.Tables[i].Name] = true
	}

	for i := range s.Tables {
		if err := s.validateTable(&s.Tables[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) validateTable(t *Table) error {
	cols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if cols[c.Name] {
			return &DuplicateColumnError{Table: t.Name, Column: c.Name}
		}
		cols[c.Name] = true

		if c.Type == TypeCharacter && c.MaxCharLength <= 0 {
			return fmt.Errorf("%w: character column `%s.%s` must declare a positive max length",
				ErrConfiguration, t.Name, c.Name)
		}
	}

	for _, pk := range t.PrimaryKey {
		if !cols[pk] {
			return fmt.Errorf("%w: primary key column `%s` does not exist in table `%s`",
				ErrConfiguration, pk, t.Name)
		}
	}

	for _, fk := range t.ForeignKeys {
		if err := s.validateForeignKey(t, fk); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) validateForeignKey(t *Table, fk ForeignKey) error {
	if len(fk.Columns) == 0 {
		return &InvalidReferenceKeyError{
			Table: t.Name, RefTable: fk.RefTable, RefColumns: fk.RefColumns,
			Reason: "foreign key has no local columns",
		}
	}
	if len(fk.Columns) != len(fk.RefColumns) {
		return &InvalidReferenceKeyError{
			Table: t.Name, RefTable: fk.RefTable, RefColumns: fk.RefColumns,
			Reason: fmt.Sprintf("local column count %d does not match referenced column count %d",
				len(fk.Columns), len(fk.RefColumns)),
		}
	}

	for _, col := range fk.Columns {
		if _, ok := t.Column(col); !ok {
			return fmt.Errorf("%w: foreign key column `%s` does not exist in table `%s`",
				ErrConfiguration, col, t.Name)
		}
	}

	ref, ok := s.Table(fk.RefTable)
	if !ok {
		return &DanglingReferenceError{Table: t.Name, RefTable: fk.RefTable}
	}

	for _, col := range fk.RefColumns {
		if _, ok := ref.Column(col); !ok {
			return &InvalidReferenceKeyError{
				Table: t.Name, RefTable: fk.RefTable, RefColumns: fk.RefColumns,
				Reason: fmt.Sprintf("column `%s` does not exist in referenced table", col),
			}
		}
	}

	if !isKeyOf(ref, fk.RefColumns) {
		return &InvalidReferenceKeyError{
			Table: t.Name, RefTable: fk.RefTable, RefColumns: fk.RefColumns,
			Reason: "referenced columns do not form a primary key or unique key",
		}
	}
	return nil
}

// isKeyOf reports whether the given columns form the primary key of the
// table or a single declared-unique column.
func isKeyOf(t *Table, columns []string) bool {
	if len(columns) == 1 {
		if c, ok := t.Column(columns[0]); ok && c.Unique {
			return true
		}
	}

	if len(columns) != len(t.PrimaryKey) || len(columns) == 0 {
		return false
	}
	pk := make(map[string]bool, len(t.PrimaryKey))
	for _, col := range t.PrimaryKey {
		pk[col] = true
	}
	for _, col := range columns {
		if !pk[col] {
			return false
		}
	}
	return true
}
