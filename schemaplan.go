// Package schemaplan turns a declarative schema description into the two
// artifacts needed to stand up a relational benchmark dataset on a target
// engine: dependency-ordered DDL and per-table bulk-load directives.
//
// The pipeline is: decode and validate the schema document, build the
// directed graph of foreign-key dependencies, compute a deterministic
// creation order (whose exact reverse is the drop order), then render
// CREATE/DROP statements and load directives for the chosen engine.
//
// # Quick Start
//
//	s, err := schemaplan.LoadFile("imdb/schema.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	plan, err := schemaplan.BuildPlan(s)
//	if err != nil {
//		log.Fatal(err)
//	}
//	script, err := plan.CreateScript("redshift")
//
// # Engines
//
// Four engines are built in: "postgres" (Aurora PostgreSQL), "redshift",
// "mysql" (Aurora MySQL), and "sqlite" for local smoke runs. Each engine
// carries its own physical type mapping and varchar length bound; a
// character column that exceeds the bound on an engine without unbounded
// text fails with a TypeConstraintError rather than being silently clamped.
//
// # Errors
//
// All validation is fail-fast and synchronous: a defective schema document,
// a genuine dependency cycle, an unmappable column type, or an inconsistent
// load parameter set is reported before any artifact is produced. Typed
// errors identify the offending table, column, or edge by name.
package schemaplan

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/calmarsh/schemaplan/internal/ddl"
	"github.com/calmarsh/schemaplan/internal/engine"
	"github.com/calmarsh/schemaplan/internal/graph"
	"github.com/calmarsh/schemaplan/internal/load"
	"github.com/calmarsh/schemaplan/internal/schema"
)

// Load decodes a JSON schema document from r. The document must enumerate
// tables with typed columns and list relationships as
// [table, column, referenced_table, referenced_column] tuples.
func Load(r io.Reader) (*schema.Schema, error) {
	return schema.Load(r)
}

// LoadFile decodes a JSON schema document from a file.
func LoadFile(path string) (*schema.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema document: %w", err)
	}
	defer func() { _ = f.Close() }()
	return schema.Load(f)
}

// Plan is the ordered creation plan for one schema: a total order over its
// tables in which every table appears after all tables it references.
// A Plan is immutable once built.
type Plan struct {
	Schema *schema.Schema
	order  *graph.Plan
}

// BuildPlan validates the schema, builds its dependency graph, and computes
// the deterministic creation order. Self-references (a table referencing
// itself) are allowed; a cycle among two or more tables fails with a
// CycleError naming the cycle.
func BuildPlan(s *schema.Schema) (*Plan, error) {
	g, err := schema.BuildGraph(s)
	if err != nil {
		return nil, err
	}
	order, err := graph.Order(g)
	if err != nil {
		return nil, err
	}
	return &Plan{Schema: s, order: order}, nil
}

// CreationOrder returns the table names in dependency order: referenced
// tables before the tables that reference them.
func (p *Plan) CreationOrder() []string {
	return p.order.CreationOrder()
}

// DropOrder returns the exact reverse of the creation order.
func (p *Plan) DropOrder() []string {
	return p.order.DropOrder()
}

// CreateStatements renders the CREATE TABLE statements for the given engine
// in creation order.
func (p *Plan) CreateStatements(engineName string) ([]string, error) {
	eng, err := engine.ByName(engineName)
	if err != nil {
		return nil, err
	}
	return ddl.NewEmitter(eng).CreateStatements(p.Schema, p.CreationOrder())
}

// DropStatements renders the idempotent DROP TABLE statements for the given
// engine in drop order.
func (p *Plan) DropStatements(engineName string) ([]string, error) {
	eng, err := engine.ByName(engineName)
	if err != nil {
		return nil, err
	}
	return ddl.NewEmitter(eng).DropStatements(p.DropOrder()), nil
}

// CreateScript renders the full CREATE script for the given engine.
func (p *Plan) CreateScript(engineName string) (string, error) {
	return p.script(engineName, func(em *ddl.Emitter, w io.Writer) error {
		return em.WriteCreateScript(w, p.Schema, p.CreationOrder())
	})
}

// DropScript renders the full DROP script for the given engine.
func (p *Plan) DropScript(engineName string) (string, error) {
	return p.script(engineName, func(em *ddl.Emitter, w io.Writer) error {
		return em.WriteDropScript(w, p.DropOrder())
	})
}

func (p *Plan) script(engineName string, write func(*ddl.Emitter, io.Writer) error) (string, error) {
	eng, err := engine.ByName(engineName)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := write(ddl.NewEmitter(eng), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// DirectiveOptions configures load directive emission.
//
// The zero value is not usable; start from DefaultDirectiveOptions, which
// carries the benchmark's TSV conventions (tab delimiter, backslash escape,
// header row, backslash-N nulls), and fill in the source location for the
// target engine: Bucket/Region (plus IAMRole for Redshift) for the S3
// engines, LocalDir for mysql and sqlite.
type DirectiveOptions struct {
	Delimiter rune
	Quote     rune
	Escape    rune
	Header    bool
	NullToken string
	Encoding  string
	Lenient   bool

	Bucket  string
	Region  string
	IAMRole string
	Prefix  string
	Gzip    bool

	LocalDir string

	// Templates overrides an engine's default load clause, keyed by engine
	// name.
	Templates map[string]string
}

// DefaultDirectiveOptions returns options preset with the benchmark's TSV
// parsing conventions.
func DefaultDirectiveOptions() *DirectiveOptions {
	csv := load.DefaultTSVOptions()
	return &DirectiveOptions{
		Delimiter: csv.Delimiter,
		Escape:    csv.Escape,
		Header:    csv.Header,
		NullToken: csv.NullToken,
		Encoding:  csv.Encoding,
	}
}

// LoadDirectives emits one bulk-load directive per table for the given
// engine. Directives are self-contained and order-independent; referential
// integrity during loading is the loader's concern.
func LoadDirectives(s *schema.Schema, engineName string, opts *DirectiveOptions) ([]load.Directive, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	eng, err := engine.ByName(engineName)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = DefaultDirectiveOptions()
	}
	return load.EmitAll(s, eng, load.Options{
		CSV: load.CSVOptions{
			Delimiter: opts.Delimiter,
			Quote:     opts.Quote,
			Escape:    opts.Escape,
			Header:    opts.Header,
			NullToken: opts.NullToken,
			Encoding:  opts.Encoding,
			Lenient:   opts.Lenient,
		},
		Bucket:    opts.Bucket,
		Region:    opts.Region,
		IAMRole:   opts.IAMRole,
		Prefix:    opts.Prefix,
		Gzip:      opts.Gzip,
		LocalDir:  opts.LocalDir,
		Templates: opts.Templates,
	})
}
