// Package exporter provides batch sinks for parsed trace records. The
// parsing side only ever sees the Exporter interface; concrete formats
// (CSV, JSONL, SQLite, Postgres) are wired up by the caller.
package exporter

import "github.com/dmsqlkit/dmtrace/internal/sqllog"

// Exporter is a batch sink for trace records. Implementations are not safe
// for concurrent use; the ingestion pipeline funnels all batches through a
// single writer goroutine.
type Exporter interface {
	// Name identifies the sink in logs and summaries.
	Name() string

	// ExportRecord writes a single record.
	ExportRecord(rec *sqllog.Record) error

	// ExportBatch writes a group of records. Implementations may batch more
	// efficiently than repeated ExportRecord calls.
	ExportBatch(records []sqllog.Record) error

	// Finalize flushes buffered output and releases the sink's resources.
	// The exporter must not be used afterwards.
	Finalize() error
}
