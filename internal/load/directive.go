package load

import (
	"fmt"
	"path"
	"strings"

	"github.com/calmarsh/schemaplan/internal/engine"
	"github.com/calmarsh/schemaplan/internal/schema"
)

// Directive is the self-contained description of one table's bulk load on
// one engine: the source location, the parsing parameters, and the rendered
// engine command.
type Directive struct {
	Table   string
	Columns []string
	Engine  string

	Delimiter rune
	Quote     rune
	Escape    rune
	Header    bool
	NullToken string

	// Source is the staged file location: an s3://bucket/key URI or a local
	// path, depending on the engine.
	Source string

	// FormatClause is the engine-specific parsing clause substituted into
	// the final command.
	FormatClause string

	Gzip    bool
	Lenient bool
	Region  string
	IAMRole string

	command string
}

// Command returns the engine command text that performs this load.
func (d Directive) Command() string { return d.command }

// Emit produces the load directive for one table on the given engine,
// failing fast on parameter sets the engine cannot act on.
func Emit(t *schema.Table, eng engine.Engine, opts Options) (Directive, error) {
	if err := opts.validate(eng.Name); err != nil {
		return Directive{}, err
	}

	d := Directive{
		Table:     t.Name,
		Columns:   t.ColumnNames(),
		Engine:    eng.Name,
		Delimiter: opts.CSV.Delimiter,
		Quote:     opts.CSV.Quote,
		Escape:    opts.CSV.Escape,
		Header:    opts.CSV.Header,
		NullToken: opts.CSV.NullToken,
		Gzip:      opts.Gzip,
		Lenient:   opts.CSV.Lenient,
		Region:    opts.Region,
		IAMRole:   opts.IAMRole,
	}

	switch eng.Name {
	case "postgres":
		return emitPostgres(d, opts)
	case "redshift":
		return emitRedshift(d, opts)
	case "mysql":
		return emitMySQL(d, opts)
	case "sqlite":
		return emitSQLite(d, opts)
	default:
		return Directive{}, &InvalidLoadOptionsError{
			Engine: eng.Name,
			Reason: "no load directive emitter for this engine",
		}
	}
}

// EmitAll produces a directive per table. The result carries no ordering
// guarantee beyond the schema's declaration order; directives are
// independent by construction.
func EmitAll(s *schema.Schema, eng engine.Engine, opts Options) ([]Directive, error) {
	directives := make([]Directive, 0, len(s.Tables))
	for i := range s.Tables {
		d, err := Emit(&s.Tables[i], eng, opts)
		if err != nil {
			return nil, fmt.Errorf("table `%s`: %w", s.Tables[i].Name, err)
		}
		directives = append(directives, d)
	}
	return directives, nil
}

// Aurora PostgreSQL loads through the aws_s3 extension; the options clause
// matches what `aws_s3.table_import_from_s3` expects.
func emitPostgres(d Directive, opts Options) (Directive, error) {
	if opts.Bucket == "" || opts.Region == "" {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "postgres loads from S3 and requires bucket and region",
		}
	}
	if d.NullToken == "" {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "null token is not set",
		}
	}

	d.FormatClause = expand(clauseTemplate(opts, d.Engine, postgresClause), d)
	key := objectKey(d, opts)
	d.Source = fmt.Sprintf("s3://%s/%s", opts.Bucket, key)
	d.command = fmt.Sprintf(
		"SELECT aws_s3.table_import_from_s3('%s', '', '%s', aws_commons.create_s3_uri('%s', '%s', '%s'));",
		d.Table, d.FormatClause, opts.Bucket, key, opts.Region)
	return d, nil
}

// Redshift COPY requires an IAM role for S3 access and mandates explicit
// escape handling for backslash-escaped input.
func emitRedshift(d Directive, opts Options) (Directive, error) {
	if opts.Bucket == "" || opts.Region == "" {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "redshift loads from S3 and requires bucket and region",
		}
	}
	if opts.IAMRole == "" {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "redshift COPY requires an IAM role ARN",
		}
	}
	if d.Escape == 0 {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "redshift COPY requires an escape character",
		}
	}
	if d.NullToken == "" {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "null token is not set",
		}
	}

	d.FormatClause = expand(clauseTemplate(opts, d.Engine, redshiftClause), d)
	d.Source = fmt.Sprintf("s3://%s/%s", opts.Bucket, objectKey(d, opts))
	d.command = fmt.Sprintf("COPY %s FROM '%s' REGION '%s' IAM_ROLE '%s' %s;",
		d.Table, d.Source, d.Region, d.IAMRole, d.FormatClause)
	return d, nil
}

func emitMySQL(d Directive, opts Options) (Directive, error) {
	if opts.LocalDir == "" {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "mysql loads from the local filesystem and requires a source directory",
		}
	}
	if d.Escape == 0 {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "mysql LOAD DATA requires an escape character",
		}
	}

	d.FormatClause = expand(clauseTemplate(opts, d.Engine, mysqlClause), d)
	d.Source = path.Join(opts.LocalDir, d.Table+fileSuffix(d))
	keyword := ""
	if opts.CSV.Lenient {
		keyword = "IGNORE "
	}
	d.command = fmt.Sprintf("LOAD DATA LOCAL INFILE '%s' %sINTO TABLE %s %s;",
		d.Source, keyword, d.Table, d.FormatClause)
	return d, nil
}

// SQLite has no SQL-level bulk load; the directive is a sqlite3 shell
// script fragment for local smoke runs.
func emitSQLite(d Directive, opts Options) (Directive, error) {
	if opts.LocalDir == "" {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "sqlite loads from the local filesystem and requires a source directory",
		}
	}
	if d.Gzip {
		return Directive{}, &InvalidLoadOptionsError{
			Engine: d.Engine, Reason: "sqlite .import cannot read gzip-compressed files",
		}
	}

	d.Source = path.Join(opts.LocalDir, d.Table+fileSuffix(d))
	mode := ".mode tabs"
	if d.Delimiter != '\t' {
		mode = fmt.Sprintf(".separator \"%s\"", renderChar(d.Delimiter))
	}
	d.FormatClause = mode
	skip := ""
	if d.Header {
		skip = "--skip 1 "
	}
	d.command = fmt.Sprintf("%s\n.import %s'%s' %s", mode, skip, d.Source, d.Table)
	return d, nil
}

// Default load clauses per engine. The delimiter, quote, escape and null
// placeholders are substituted from the directive; callers can override the
// whole clause per engine via Options.Templates.
const (
	postgresClause = "(FORMAT text, DELIMITER E''{delimiter}'', NULL ''{null}''{header})"
	redshiftClause = "DELIMITER '{delimiter}' ESCAPE{header} NULL AS '{null}'{maxerror}{gzip}"
	mysqlClause    = "FIELDS TERMINATED BY '{delimiter}' ESCAPED BY '{escape}' LINES TERMINATED BY '\\n'{ignore}"
)

func clauseTemplate(opts Options, engineName, fallback string) string {
	if tpl, ok := opts.Templates[engineName]; ok {
		return tpl
	}
	return fallback
}

// expand substitutes the directive's parameters into a clause template.
func expand(template string, d Directive) string {
	r := strings.NewReplacer(
		"{delimiter}", renderChar(d.Delimiter),
		"{quote}", renderChar(d.Quote),
		"{escape}", renderChar(d.Escape),
		"{null}", d.NullToken,
		"{header}", headerClause(d),
		"{ignore}", ignoreClause(d),
		"{gzip}", gzipClause(d),
		"{maxerror}", maxErrorClause(d),
	)
	return r.Replace(template)
}

func headerClause(d Directive) string {
	if !d.Header {
		return ""
	}
	switch d.Engine {
	case "postgres":
		return ", HEADER"
	case "redshift":
		return " IGNOREHEADER 1"
	}
	return ""
}

func ignoreClause(d Directive) string {
	if d.Engine == "mysql" && d.Header {
		return " IGNORE 1 LINES"
	}
	return ""
}

func gzipClause(d Directive) string {
	if d.Engine == "redshift" && d.Gzip {
		return " GZIP"
	}
	return ""
}

// Redshift is the one engine with a row-error budget; the other engines
// either fail hard or skip via IGNORE.
func maxErrorClause(d Directive) string {
	if d.Engine == "redshift" && d.Lenient {
		return " MAXERROR 100"
	}
	return ""
}

func objectKey(d Directive, opts Options) string {
	key := d.Table + fileSuffix(d)
	if opts.Prefix != "" {
		return opts.Prefix + "/" + key
	}
	return key
}

func fileSuffix(d Directive) string {
	if d.Gzip {
		return ".tsv.gz"
	}
	return ".tsv"
}

// renderChar renders a parsing character for embedding into command text.
func renderChar(c rune) string {
	switch c {
	case 0:
		return ""
	case '\t':
		return `\t`
	case '\\':
		return `\\`
	case '\'':
		return `''`
	default:
		return string(c)
	}
}
