package exporter

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/dmsqlkit/dmtrace/internal/sqllog"
)

// CSVOptions configures a CSV sink.
type CSVOptions struct {
	Path string
	// Append adds to an existing file instead of truncating it; the header
	// row is only written when the file starts out empty.
	Append bool
}

// CSVExporter writes records as CSV rows, one file per exporter.
type CSVExporter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVExporter opens (or creates) the output file and writes the header
// row when the file is empty.
func NewCSVExporter(opts CSVOptions) (*CSVExporter, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if opts.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(opts.Path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening csv output %s: %w", opts.Path, err)
	}

	e := &CSVExporter{file: f, writer: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat csv output %s: %w", opts.Path, err)
	}
	if info.Size() == 0 {
		if err := e.writer.Write(sqllog.FieldNames()); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing csv header: %w", err)
		}
	}
	return e, nil
}

func (e *CSVExporter) Name() string { return "csv" }

func (e *CSVExporter) ExportRecord(rec *sqllog.Record) error {
	if err := e.writer.Write(rec.FieldValues()); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	return nil
}

func (e *CSVExporter) ExportBatch(records []sqllog.Record) error {
	for i := range records {
		if err := e.ExportRecord(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *CSVExporter) Finalize() error {
	e.writer.Flush()
	if err := e.writer.Error(); err != nil {
		e.file.Close()
		return fmt.Errorf("flushing csv output: %w", err)
	}
	return e.file.Close()
}
