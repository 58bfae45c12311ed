// Package load emits per-engine bulk-load directives: the structured
// parameter set an external loader needs to copy one table's delimited file
// into the target engine. Directives are independent of table ordering and
// self-contained, so a loader may execute them in any order or concurrently.
package load

import "fmt"

// CSVOptions are the parsing options of the delimited source files, passed
// through into each engine's load clause.
type CSVOptions struct {
	Delimiter rune
	Quote     rune
	Escape    rune
	Header    bool
	// NullToken is the literal that marks a NULL field, e.g. `\N`.
	NullToken string
	Encoding  string
	// Lenient asks the engine to tolerate a bounded number of malformed
	// rows where the engine supports that.
	Lenient bool
}

// DefaultTSVOptions returns the parsing options of the benchmark's TSV
// dumps: tab-delimited, backslash-escaped, no quoting, one header row,
// backslash-N nulls.
func DefaultTSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: '\t',
		Escape:    '\\',
		Header:    true,
		NullToken: `\N`,
		Encoding:  "utf-8",
	}
}

// Options configures directive emission for one schema.
type Options struct {
	CSV CSVOptions

	// Bucket, Region and IAMRole locate the staged dataset for the S3-backed
	// engines. IAMRole is only required by Redshift.
	Bucket  string
	Region  string
	IAMRole string

	// Prefix namespaces the staged object keys, usually the dataset name:
	// <prefix>/<table>.tsv.gz.
	Prefix string

	// Gzip marks the staged table files as gzip-compressed.
	Gzip bool

	// LocalDir is the directory holding the table files for engines loading
	// from the local filesystem (mysql, sqlite).
	LocalDir string

	// Templates overrides the engine's default load clause. Keys are engine
	// names; values are clause templates with {delimiter}, {quote},
	// {escape} and {null} placeholders.
	Templates map[string]string
}

// InvalidLoadOptionsError reports a load parameter set that is internally
// inconsistent for the target engine.
type InvalidLoadOptionsError struct {
	Engine string
	Reason string
}

func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options for engine `%s`: %s", e.Engine, e.Reason)
}

// validate rejects parameter sets no engine-side loader could act on
// consistently. Engine-specific requirements are checked by the per-engine
// emit paths.
func (o Options) validate(engineName string) error {
	if o.CSV.Delimiter == 0 {
		return &InvalidLoadOptionsError{Engine: engineName, Reason: "delimiter is not set"}
	}
	if o.CSV.Quote != 0 && o.CSV.Quote == o.CSV.Delimiter {
		return &InvalidLoadOptionsError{Engine: engineName, Reason: "quote character equals delimiter"}
	}
	if o.CSV.Escape != 0 && o.CSV.Escape == o.CSV.Delimiter {
		return &InvalidLoadOptionsError{Engine: engineName, Reason: "escape character equals delimiter"}
	}
	switch o.CSV.Encoding {
	case "", "utf-8", "utf8":
	default:
		return &InvalidLoadOptionsError{
			Engine: engineName,
			Reason: fmt.Sprintf("unsupported encoding `%s`", o.CSV.Encoding),
		}
	}
	return nil
}
