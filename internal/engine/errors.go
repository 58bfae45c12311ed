package engine

import (
	"fmt"

	"github.com/calmarsh/schemaplan/internal/schema"
)

// UnsupportedTypeError reports a logical type the target engine has no
// physical type or configured fallback for.
type UnsupportedTypeError struct {
	Engine string
	Type   schema.DataType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("engine `%s` does not support type `%s` and no fallback is configured",
		e.Engine, e.Type)
}

// TypeConstraintError reports a character column whose declared max length
// exceeds the engine's varchar bound on an engine without unbounded text.
type TypeConstraintError struct {
	Engine    string
	Column    string
	Length    int
	MaxLength int
}

func (e *TypeConstraintError) Error() string {
	return fmt.Sprintf("column `%s`: declared length %d exceeds engine `%s` maximum varchar length %d",
		e.Column, e.Length, e.Engine, e.MaxLength)
}
