package exporter

import (
	"errors"
	"strings"

	"github.com/dmsqlkit/dmtrace/internal/sqllog"
)

// MultiExporter fans every record out to a group of child sinks. A child's
// failure does not stop the remaining children; all failures are joined into
// the returned error.
type MultiExporter struct {
	children []Exporter
}

func NewMultiExporter(children ...Exporter) *MultiExporter {
	return &MultiExporter{children: children}
}

// Add appends another child sink.
func (m *MultiExporter) Add(e Exporter) {
	m.children = append(m.children, e)
}

// Len returns the number of child sinks.
func (m *MultiExporter) Len() int { return len(m.children) }

func (m *MultiExporter) Name() string {
	names := make([]string, len(m.children))
	for i, c := range m.children {
		names[i] = c.Name()
	}
	return "multi[" + strings.Join(names, ",") + "]"
}

func (m *MultiExporter) ExportRecord(rec *sqllog.Record) error {
	var errs []error
	for _, c := range m.children {
		if err := c.ExportRecord(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiExporter) ExportBatch(records []sqllog.Record) error {
	var errs []error
	for _, c := range m.children {
		if err := c.ExportBatch(records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiExporter) Finalize() error {
	var errs []error
	for _, c := range m.children {
		if err := c.Finalize(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
