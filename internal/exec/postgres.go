// Package exec applies emitted artifacts to live databases: DDL statements
// sequentially in plan order, load directives concurrently per table. It is
// the execution collaborator the core hands its artifacts to; nothing here
// generates or reorders statements.
package exec

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calmarsh/schemaplan/internal/load"
)

const (
	disableFKChecks = "SET session_replication_role = 'replica';"
	enableFKChecks  = "SET session_replication_role = 'origin';"

	createAWSS3Extension = "CREATE EXTENSION IF NOT EXISTS aws_s3 CASCADE;"
)

// PostgresExecutor executes statements against a Postgres-compatible
// database (Aurora PostgreSQL or Redshift) over a pgx connection pool, so
// per-table loads can run on separate connections.
type PostgresExecutor struct {
	pool *pgxpool.Pool
}

// NewPostgresExecutor connects to the given database URL and verifies the
// connection.
func NewPostgresExecutor(ctx context.Context, connString string) (*PostgresExecutor, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresExecutor{pool: pool}, nil
}

// Close releases the connection pool.
func (e *PostgresExecutor) Close() {
	e.pool.Close()
}

// ApplyStatements executes the statements one by one, in order, stopping at
// the first failure. CREATE scripts depend on this ordering; DROP scripts
// are idempotent either way.
func (e *PostgresExecutor) ApplyStatements(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := e.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement failed: %w\n%s", err, stmt)
		}
	}
	return nil
}

// LoadConfig controls directive execution.
type LoadConfig struct {
	// SuspendFKChecks disables foreign-key enforcement for the duration of
	// each load, allowing tables to load concurrently regardless of their
	// dependency order. Aurora PostgreSQL only.
	SuspendFKChecks bool

	// Analyze refreshes table statistics after each load.
	Analyze bool

	// InstallAWSS3 installs the aws_s3 extension before loading. Aurora
	// PostgreSQL only.
	InstallAWSS3 bool
}

// Load executes all directives concurrently, one goroutine per table, and
// returns the first failure. Remaining loads are abandoned on error via
// context cancellation.
func (e *PostgresExecutor) Load(ctx context.Context, directives []load.Directive, cfg LoadConfig) error {
	if cfg.InstallAWSS3 {
		if _, err := e.pool.Exec(ctx, createAWSS3Extension); err != nil {
			return fmt.Errorf("failed to install aws_s3 extension: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errc := make(chan error, len(directives))

	for _, d := range directives {
		wg.Add(1)
		go func(d load.Directive) {
			defer wg.Done()
			if err := e.loadTable(ctx, d, cfg); err != nil {
				errc <- fmt.Errorf("table `%s`: %w", d.Table, err)
				cancel()
			}
		}(d)
	}

	wg.Wait()
	close(errc)
	return <-errc
}

func (e *PostgresExecutor) loadTable(ctx context.Context, d load.Directive, cfg LoadConfig) error {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if cfg.SuspendFKChecks {
		if _, err := conn.Exec(ctx, disableFKChecks); err != nil {
			return err
		}
	}

	if _, err := conn.Exec(ctx, d.Command()); err != nil {
		return err
	}

	if cfg.SuspendFKChecks {
		if _, err := conn.Exec(ctx, enableFKChecks); err != nil {
			return err
		}
	}

	if cfg.Analyze {
		for _, stmt := range analyzeStatements(d) {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

// analyzeStatements returns the post-load statistics refresh for the
// directive's engine. Redshift cannot combine VACUUM and ANALYZE in one
// statement.
func analyzeStatements(d load.Directive) []string {
	if d.Engine == "redshift" {
		return []string{
			fmt.Sprintf("VACUUM %s;", d.Table),
			fmt.Sprintf("ANALYZE %s;", d.Table),
		}
	}
	return []string{fmt.Sprintf("VACUUM ANALYZE %s;", d.Table)}
}
