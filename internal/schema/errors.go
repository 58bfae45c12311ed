package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is the umbrella for every defect in a schema description:
// duplicate names, dangling references, invalid key shapes. All typed
// configuration errors unwrap to it, so callers can match the whole family
// with errors.Is(err, ErrConfiguration).
var ErrConfiguration = errors.New("invalid schema description")

// DuplicateTableError reports a table name declared more than once.
type DuplicateTableError struct {
	Table string
}

func (e *DuplicateTableError) Error() string {
	return fmt.Sprintf("duplicate table `%s`", e.Table)
}

func (e *DuplicateTableError) Unwrap() error { return ErrConfiguration }

// DuplicateColumnError reports a column name declared more than once within
// a single table.
type DuplicateColumnError struct {
	Table  string
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column `%s` in table `%s`", e.Column, e.Table)
}

func (e *DuplicateColumnError) Unwrap() error { return ErrConfiguration }

// DanglingReferenceError reports a foreign key whose referenced table does
// not exist in the schema.
type DanglingReferenceError struct {
	Table    string
	RefTable string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("table `%s` references missing table `%s`", e.Table, e.RefTable)
}

func (e *DanglingReferenceError) Unwrap() error { return ErrConfiguration }

// InvalidReferenceKeyError reports a foreign key whose referenced columns do
// not form a primary key or declared unique key on the referenced table, or
// whose column lists are otherwise malformed.
type InvalidReferenceKeyError struct {
	Table      string
	RefTable   string
	RefColumns []string
	Reason     string
}

func (e *InvalidReferenceKeyError) Error() string {
	return fmt.Sprintf("foreign key on table `%s` referencing `%s` (%s): %s",
		e.Table, e.RefTable, strings.Join(e.RefColumns, ", "), e.Reason)
}

func (e *InvalidReferenceKeyError) Unwrap() error { return ErrConfiguration }

// UnknownTypeError reports a dtype outside the closed logical type set.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("`%s` does not correspond to any logical data type", e.Type)
}

func (e *UnknownTypeError) Unwrap() error { return ErrConfiguration }
