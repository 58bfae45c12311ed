package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// schemaDoc is the JSON wire shape of a schema description. Tables carry
// their columns; relationships are listed separately as
// [table, column, referenced_table, referenced_column] tuples. A composite
// foreign key cannot be expressed as independent tuples, so tables may also
// declare foreign_keys explicitly.
type schemaDoc struct {
	Name          string     `json:"name"`
	Tables        []tableDoc `json:"tables"`
	Relationships [][]string `json:"relationships"`
}

type tableDoc struct {
	Name        string          `json:"name"`
	Columns     []columnDoc     `json:"columns"`
	PrimaryKey  []string        `json:"primary_key,omitempty"`
	ForeignKeys []foreignKeyDoc `json:"foreign_keys,omitempty"`
}

type columnDoc struct {
	Name          string `json:"name"`
	DType         string `json:"dtype"`
	IsPrimaryKey  bool   `json:"is_primary_key"`
	IsUnique      bool   `json:"is_unique"`
	IsNotNull     bool   `json:"is_not_null"`
	MaxCharLength *int   `json:"max_char_length"`
}

type foreignKeyDoc struct {
	Name       string   `json:"name,omitempty"`
	Columns    []string `json:"columns"`
	RefTable   string   `json:"ref_table"`
	RefColumns []string `json:"ref_columns"`
}

// Load decodes a JSON schema document. Decoding is strict: unknown fields,
// unknown dtypes, malformed relationship tuples, and character columns
// without a positive max length are all rejected here, before any graph or
// ordering logic runs.
func Load(r io.Reader) (*Schema, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc schemaDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("%w: schema name is required", ErrConfiguration)
	}

	s := &Schema{Name: doc.Name}
	for _, td := range doc.Tables {
		table, err := decodeTable(td)
		if err != nil {
			return nil, err
		}
		s.Tables = append(s.Tables, *table)
	}

	for _, rel := range doc.Relationships {
		if len(rel) != 4 {
			return nil, fmt.Errorf("%w: relationship %v must be a [table, column, ref_table, ref_column] tuple",
				ErrConfiguration, rel)
		}
		table, ok := s.Table(rel[0])
		if !ok {
			return nil, fmt.Errorf("%w: relationship names unknown table `%s`", ErrConfiguration, rel[0])
		}
		table.ForeignKeys = append(table.ForeignKeys, ForeignKey{
			Columns:    []string{rel[1]},
			RefTable:   rel[2],
			RefColumns: []string{rel[3]},
		})
	}

	return s, nil
}

func decodeTable(td tableDoc) (*Table, error) {
	if td.Name == "" {
		return nil, fmt.Errorf("%w: table with empty name", ErrConfiguration)
	}
	if len(td.Columns) == 0 {
		return nil, fmt.Errorf("%w: table `%s` has no columns", ErrConfiguration, td.Name)
	}

	table := &Table{Name: td.Name, PrimaryKey: td.PrimaryKey}

	for _, cd := range td.Columns {
		dt, err := ParseDataType(cd.DType)
		if err != nil {
			return nil, fmt.Errorf("table `%s`, column `%s`: %w", td.Name, cd.Name, err)
		}

		col := Column{
			Name:     cd.Name,
			Type:     dt,
			Nullable: !cd.IsNotNull && !cd.IsPrimaryKey,
			Unique:   cd.IsUnique || cd.IsPrimaryKey,
		}
		if dt == TypeCharacter {
			if cd.MaxCharLength == nil || *cd.MaxCharLength <= 0 {
				return nil, fmt.Errorf("%w: character column `%s.%s` must declare a positive max_char_length",
					ErrConfiguration, td.Name, cd.Name)
			}
			col.MaxCharLength = *cd.MaxCharLength
		}
		table.Columns = append(table.Columns, col)

		// Column-level primary key markers build up a single- or multi-column
		// key in stored column order; an explicit table-level primary_key
		// takes precedence.
		if cd.IsPrimaryKey && len(td.PrimaryKey) == 0 {
			table.PrimaryKey = append(table.PrimaryKey, cd.Name)
		}
	}

	for _, fkd := range td.ForeignKeys {
		table.ForeignKeys = append(table.ForeignKeys, ForeignKey{
			Name:       fkd.Name,
			Columns:    fkd.Columns,
			RefTable:   fkd.RefTable,
			RefColumns: fkd.RefColumns,
		})
	}

	return table, nil
}

// Dump writes the schema back out as a JSON document. Single-column foreign
// keys are emitted as relationship tuples in lexicographical order so that
// identical schemas always serialize identically; composite keys stay on
// their tables.
func Dump(w io.Writer, s *Schema) error {
	doc := schemaDoc{Name: s.Name, Relationships: [][]string{}}

	for _, t := range s.Tables {
		td := tableDoc{Name: t.Name}

		singlePK := len(t.PrimaryKey) == 1
		if !singlePK {
			td.PrimaryKey = t.PrimaryKey
		}

		for _, c := range t.Columns {
			cd := columnDoc{
				Name:         c.Name,
				DType:        string(c.Type),
				IsPrimaryKey: singlePK && t.PrimaryKey[0] == c.Name,
				IsUnique:     c.Unique,
				IsNotNull:    !c.Nullable,
			}
			if c.Type == TypeCharacter {
				length := c.MaxCharLength
				cd.MaxCharLength = &length
			}
			td.Columns = append(td.Columns, cd)
		}

		for _, fk := range t.ForeignKeys {
			if len(fk.Columns) == 1 && fk.Name == "" {
				doc.Relationships = append(doc.Relationships,
					[]string{t.Name, fk.Columns[0], fk.RefTable, fk.RefColumns[0]})
				continue
			}
			td.ForeignKeys = append(td.ForeignKeys, foreignKeyDoc{
				Name:       fk.Name,
				Columns:    fk.Columns,
				RefTable:   fk.RefTable,
				RefColumns: fk.RefColumns,
			})
		}

		doc.Tables = append(doc.Tables, td)
	}

	sort.Slice(doc.Relationships, func(i, j int) bool {
		a, b := doc.Relationships[i], doc.Relationships[j]
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
