package exec

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/calmarsh/schemaplan/internal/load"
)

// SQLExecutor executes statements against the database/sql engines: MySQL
// (Aurora MySQL) and SQLite.
type SQLExecutor struct {
	db     *sql.DB
	driver string
}

// NewMySQLExecutor connects to a MySQL DSN and verifies the connection.
// LOAD DATA LOCAL INFILE directives require `allowAllFiles` or the
// equivalent local-infile permission on the DSN.
func NewMySQLExecutor(ctx context.Context, dsn string) (*SQLExecutor, error) {
	return newSQLExecutor(ctx, "mysql", dsn)
}

// NewSQLiteExecutor opens a SQLite database file.
func NewSQLiteExecutor(ctx context.Context, path string) (*SQLExecutor, error) {
	return newSQLExecutor(ctx, "sqlite3", path)
}

func newSQLExecutor(ctx context.Context, driver, dsn string) (*SQLExecutor, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLExecutor{db: db, driver: driver}, nil
}

// Close closes the database handle.
func (e *SQLExecutor) Close() error {
	return e.db.Close()
}

// ApplyStatements executes the statements one by one, in order, stopping at
// the first failure.
func (e *SQLExecutor) ApplyStatements(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement failed: %w\n%s", err, stmt)
		}
	}
	return nil
}

// Load executes mysql load directives sequentially. SQLite directives are
// sqlite3 shell fragments and cannot run over a SQL connection.
func (e *SQLExecutor) Load(ctx context.Context, directives []load.Directive) error {
	for _, d := range directives {
		if d.Engine == "sqlite" {
			return fmt.Errorf("table `%s`: sqlite directives must run through the sqlite3 shell", d.Table)
		}
		if _, err := e.db.ExecContext(ctx, d.Command()); err != nil {
			return fmt.Errorf("table `%s`: %w", d.Table, err)
		}
	}
	return nil
}
