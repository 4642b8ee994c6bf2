package exporter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmsqlkit/dmtrace/internal/sqllog"
)

// JSONOptions configures a JSONL sink.
type JSONOptions struct {
	Path   string
	Append bool
}

// JSONExporter writes records as JSON Lines: one object per record.
type JSONExporter struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

func NewJSONExporter(opts JSONOptions) (*JSONExporter, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if opts.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(opts.Path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening json output %s: %w", opts.Path, err)
	}
	buf := bufio.NewWriter(f)
	return &JSONExporter{file: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

func (e *JSONExporter) Name() string { return "json" }

func (e *JSONExporter) ExportRecord(rec *sqllog.Record) error {
	if err := e.enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return nil
}

func (e *JSONExporter) ExportBatch(records []sqllog.Record) error {
	for i := range records {
		if err := e.ExportRecord(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *JSONExporter) Finalize() error {
	if err := e.buf.Flush(); err != nil {
		e.file.Close()
		return fmt.Errorf("flushing json output: %w", err)
	}
	return e.file.Close()
}
