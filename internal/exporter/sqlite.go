package exporter

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dmsqlkit/dmtrace/internal/sqllog"
)

// SQLiteOptions configures a SQLite sink.
type SQLiteOptions struct {
	Path  string
	Table string
	// Append keeps existing rows; otherwise the table is dropped and
	// recreated first.
	Append bool
}

// SQLiteExporter writes records into a SQLite table, one transaction per
// batch.
type SQLiteExporter struct {
	db    *sql.DB
	table string
}

func NewSQLiteExporter(opts SQLiteOptions) (*SQLiteExporter, error) {
	if opts.Table == "" {
		opts.Table = "sqllogs"
	}

	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", opts.Path, err)
	}

	e := &SQLiteExporter{db: db, table: opts.Table}

	if !opts.Append {
		if _, err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, e.table)); err != nil {
			db.Close()
			return nil, fmt.Errorf("dropping table %s: %w", e.table, err)
		}
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %q (
		occurrence_time TEXT NOT NULL,
		ep INTEGER NOT NULL,
		session TEXT,
		thread TEXT,
		user TEXT,
		trx_id TEXT,
		statement TEXT,
		appname TEXT,
		ip TEXT,
		sql_type TEXT,
		description TEXT NOT NULL,
		execute_time INTEGER,
		rowcount INTEGER,
		execute_id INTEGER
	)`, e.table)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table %s: %w", e.table, err)
	}

	return e, nil
}

func (e *SQLiteExporter) Name() string { return "sqlite" }

func (e *SQLiteExporter) insertSQL() string {
	cols := sqllog.FieldNames()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		e.table, strings.Join(cols, ", "), placeholders)
}

func recordArgs(rec *sqllog.Record) []any {
	return []any{
		rec.OccurrenceTime,
		rec.Endpoint,
		rec.Session,
		rec.Thread,
		rec.User,
		rec.TrxID,
		rec.Statement,
		rec.AppName,
		rec.IP,
		rec.SQLType,
		rec.Description,
		rec.ExecuteTimeMS,
		rec.RowCount,
		rec.ExecuteID,
	}
}

func (e *SQLiteExporter) ExportRecord(rec *sqllog.Record) error {
	if _, err := e.db.Exec(e.insertSQL(), recordArgs(rec)...); err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

func (e *SQLiteExporter) ExportBatch(records []sqllog.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch transaction: %w", err)
	}
	stmt, err := tx.Prepare(e.insertSQL())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing batch insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		if _, err := stmt.Exec(recordArgs(&records[i])...); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting batch record: %w", err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) Finalize() error {
	return e.db.Close()
}
