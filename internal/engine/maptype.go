package engine

import (
	"fmt"

	"github.com/calmarsh/schemaplan/internal/schema"
)

// knownTypes is the closed logical type set. MapColumn distinguishes a type
// outside this set (a configuration defect) from a known type the engine
// cannot represent.
var knownTypes = map[schema.DataType]bool{
	schema.TypeInteger:   true,
	schema.TypeCharacter: true,
	schema.TypeBoolean:   true,
	schema.TypeReal:      true,
}

// MapColumn maps a column's logical type to this engine's physical type.
// It is a pure function of the column and the engine configuration: the
// same inputs always yield the same physical type or the same error.
//
// Character columns are sized to their declared max length. A column longer
// than the engine's varchar bound falls back to the engine's unbounded text
// type; if the engine has none, mapping fails with a TypeConstraintError
// naming the column and both lengths.
func (e Engine) MapColumn(col schema.Column) (string, error) {
	if !knownTypes[col.Type] {
		return "", &schema.UnknownTypeError{Type: string(col.Type)}
	}

	if col.Type == schema.TypeCharacter {
		return e.mapCharacter(col)
	}

	if phys, ok := e.Types[col.Type]; ok {
		return phys, nil
	}
	if phys, ok := e.Fallbacks[col.Type]; ok {
		return phys, nil
	}
	return "", &UnsupportedTypeError{Engine: e.Name, Type: col.Type}
}

func (e Engine) mapCharacter(col schema.Column) (string, error) {
	base, ok := e.Types[schema.TypeCharacter]
	if !ok {
		return "", &UnsupportedTypeError{Engine: e.Name, Type: schema.TypeCharacter}
	}

	if col.MaxCharLength <= e.MaxCharLength {
		return fmt.Sprintf("%s(%d)", base, col.MaxCharLength), nil
	}
	if e.TextType != "" {
		return e.TextType, nil
	}
	return "", &TypeConstraintError{
		Engine:    e.Name,
		Column:    col.Name,
		Length:    col.MaxCharLength,
		MaxLength: e.MaxCharLength,
	}
}
