// Package engine describes target database engines and maps logical column
// types to each engine's physical types. Engines are plain data passed in by
// the caller; there is no process-wide registry.
package engine

import (
	"fmt"
	"sort"

	"github.com/calmarsh/schemaplan/internal/schema"
)

// Engine is the physical-type and dialect configuration for one target
// database engine.
type Engine struct {
	// Name identifies the engine in documents and CLI flags, e.g. "postgres".
	Name string

	// Types maps each supported logical type to the engine's physical type
	// name. The character entry is the bounded varchar base name; the length
	// is appended by MapColumn.
	Types map[schema.DataType]string

	// Fallbacks maps logical types the engine has no native type for to a
	// substitute physical type, e.g. boolean -> integer on SQLite.
	Fallbacks map[schema.DataType]string

	// MaxCharLength is the engine's maximum bounded varchar length.
	MaxCharLength int

	// TextType is the engine's unbounded text type, used when a character
	// column exceeds MaxCharLength. Empty if the engine has no unbounded
	// text, in which case over-length columns are an error.
	TextType string
}

// Builtin engine definitions, modeled on the engines the benchmark
// provisions: Aurora PostgreSQL, Redshift, Aurora MySQL, and SQLite for
// local smoke runs.
var (
	Postgres = Engine{
		Name: "postgres",
		Types: map[schema.DataType]string{
			schema.TypeInteger:   "integer",
			schema.TypeCharacter: "character varying",
			schema.TypeBoolean:   "boolean",
			schema.TypeReal:      "real",
		},
		MaxCharLength: 10485760,
		TextType:      "text",
	}

	// Redshift stores text in length-bounded varchars only; there is no
	// unbounded fallback, so over-length character columns must fail.
	Redshift = Engine{
		Name: "redshift",
		Types: map[schema.DataType]string{
			schema.TypeInteger:   "integer",
			schema.TypeCharacter: "character varying",
			schema.TypeBoolean:   "boolean",
			schema.TypeReal:      "real",
		},
		MaxCharLength: 65535,
	}

	MySQL = Engine{
		Name: "mysql",
		Types: map[schema.DataType]string{
			schema.TypeInteger:   "int",
			schema.TypeCharacter: "varchar",
			schema.TypeBoolean:   "boolean",
			schema.TypeReal:      "float",
		},
		MaxCharLength: 16383,
		TextType:      "text",
	}

	SQLite = Engine{
		Name: "sqlite",
		Types: map[schema.DataType]string{
			schema.TypeInteger:   "integer",
			schema.TypeCharacter: "varchar",
			schema.TypeReal:      "real",
		},
		Fallbacks: map[schema.DataType]string{
			schema.TypeBoolean: "integer",
		},
		MaxCharLength: 1000000000,
		TextType:      "text",
	}
)

var builtins = map[string]Engine{
	Postgres.Name: Postgres,
	Redshift.Name: Redshift,
	MySQL.Name:    MySQL,
	SQLite.Name:   SQLite,
}

// ByName returns the builtin engine with the given name.
func ByName(name string) (Engine, error) {
	e, ok := builtins[name]
	if !ok {
		return Engine{}, fmt.Errorf("unknown engine `%s` (supported: %v)", name, Names())
	}
	return e, nil
}

// Names returns the builtin engine names in lexicographical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
