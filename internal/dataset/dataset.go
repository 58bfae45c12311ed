// Package dataset models a benchmark dataset on the local filesystem: a
// schema document plus one delimited dump file per table, and the staging of
// those dumps to S3 for the cloud engines to load from.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calmarsh/schemaplan/internal/schema"
)

const (
	defaultSchemaFilename = "schema.json"
	defaultTablesDirname  = "tables"
)

// Dataset locates a dataset's files. Table dumps live under TablesDirname
// as <table>.tsv or <table>.tsv.gz.
type Dataset struct {
	Name           string
	Dir            string
	SchemaFilename string
	TablesDirname  string
}

// New returns a dataset rooted at dir with the default file layout.
func New(name, dir string) Dataset {
	return Dataset{
		Name:           name,
		Dir:            dir,
		SchemaFilename: defaultSchemaFilename,
		TablesDirname:  defaultTablesDirname,
	}
}

// SchemaPath returns the path of the dataset's schema document.
func (d Dataset) SchemaPath() string {
	return filepath.Join(d.Dir, d.SchemaFilename)
}

// TablesDir returns the directory holding the table dump files.
func (d Dataset) TablesDir() string {
	return filepath.Join(d.Dir, d.TablesDirname)
}

// Schema reads and decodes the dataset's schema document.
func (d Dataset) Schema() (*schema.Schema, error) {
	f, err := os.Open(d.SchemaPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read schema document: %w", err)
	}
	defer func() { _ = f.Close() }()
	return schema.Load(f)
}

// TablePath returns the dump file for the given table, preferring the
// uncompressed file when both exist.
func (d Dataset) TablePath(table string) (string, error) {
	for _, suffix := range []string{".tsv", ".tsv.gz"} {
		path := filepath.Join(d.TablesDir(), table+suffix)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no dump file for table `%s` in %s", table, d.TablesDir())
}

// TableFiles returns every table dump file in the dataset, sorted by name.
func (d Dataset) TableFiles() ([]string, error) {
	entries, err := os.ReadDir(d.TablesDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list table files: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tsv.gz") {
			files = append(files, filepath.Join(d.TablesDir(), name))
		}
	}
	return files, nil
}

// ObjectKey returns the S3 object key a table file is staged under,
// namespaced by the dataset name.
func (d Dataset) ObjectKey(filename string) string {
	return d.Name + "/" + filepath.Base(filename)
}
