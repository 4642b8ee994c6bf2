package exporter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmsqlkit/dmtrace/internal/sqllog"
)

// PostgresOptions configures a Postgres sink.
type PostgresOptions struct {
	// URL is a pgx connection string (postgres://...).
	URL   string
	Table string
	// Append keeps existing rows; otherwise the table is truncated first.
	Append bool
}

// PostgresExporter bulk-loads records into a Postgres table using COPY.
type PostgresExporter struct {
	pool  *pgxpool.Pool
	ctx   context.Context
	table string
}

func NewPostgresExporter(ctx context.Context, opts PostgresOptions) (*PostgresExporter, error) {
	if opts.Table == "" {
		opts.Table = "sqllogs"
	}

	pool, err := pgxpool.New(ctx, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	e := &PostgresExporter{pool: pool, ctx: ctx, table: opts.Table}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %q (
		occurrence_time VARCHAR(23) NOT NULL,
		ep INTEGER NOT NULL,
		session TEXT,
		thread TEXT,
		"user" TEXT,
		trx_id TEXT,
		statement TEXT,
		appname TEXT,
		ip TEXT,
		sql_type TEXT,
		description TEXT NOT NULL,
		execute_time BIGINT,
		rowcount BIGINT,
		execute_id BIGINT
	)`, e.table)
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating table %s: %w", e.table, err)
	}

	if !opts.Append {
		if _, err := pool.Exec(ctx, fmt.Sprintf(`TRUNCATE TABLE %q`, e.table)); err != nil {
			pool.Close()
			return nil, fmt.Errorf("truncating table %s: %w", e.table, err)
		}
	}

	return e, nil
}

func (e *PostgresExporter) Name() string { return "postgres" }

func (e *PostgresExporter) ExportRecord(rec *sqllog.Record) error {
	return e.ExportBatch([]sqllog.Record{*rec})
}

func (e *PostgresExporter) ExportBatch(records []sqllog.Record) error {
	if len(records) == 0 {
		return nil
	}

	_, err := e.pool.CopyFrom(
		e.ctx,
		pgx.Identifier{e.table},
		sqllog.FieldNames(),
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return recordArgs(&records[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying batch of %d records: %w", len(records), err)
	}
	return nil
}

func (e *PostgresExporter) Finalize() error {
	e.pool.Close()
	return nil
}
