package ingestion

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmsqlkit/dmtrace/internal/sqllog"
)

// ErrorWriter appends parse errors to a JSONL file. Producers report from
// any goroutine; a single background goroutine owns the file, so writes are
// never interleaved. Closing the feed channel is the shutdown signal.
type ErrorWriter struct {
	feed   chan sqllog.ParseError
	done   chan struct{}
	logger *slog.Logger

	// written only by the writer goroutine, read after done closes
	writeErr error
	count    int
}

// NewErrorWriter opens path in append mode and starts the writer goroutine.
// buffer sizes the feed channel; 0 falls back to a small default.
func NewErrorWriter(path string, buffer int, logger *slog.Logger) (*ErrorWriter, error) {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening error output %s: %w", path, err)
	}

	w := &ErrorWriter{
		feed:   make(chan sqllog.ParseError, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go w.run(f)
	return w, nil
}

func (w *ErrorWriter) run(f *os.File) {
	defer close(w.done)

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)

	for pe := range w.feed {
		if w.writeErr != nil {
			continue // keep draining so producers never block
		}
		if err := enc.Encode(&pe); err != nil {
			w.writeErr = fmt.Errorf("writing error record: %w", err)
			w.logger.Error("error output write failed", "error", err)
		} else {
			w.count++
		}
	}

	if err := buf.Flush(); err != nil && w.writeErr == nil {
		w.writeErr = fmt.Errorf("flushing error output: %w", err)
	}
	if err := f.Close(); err != nil && w.writeErr == nil {
		w.writeErr = fmt.Errorf("closing error output: %w", err)
	}
}

// Report forwards a batch of parse errors to the writer goroutine. Safe for
// concurrent use. Must not be called after Close.
func (w *ErrorWriter) Report(errs []sqllog.ParseError) {
	for _, pe := range errs {
		w.feed <- pe
	}
}

// Close signals shutdown, waits for the writer to flush, and returns the
// first write failure, if any.
func (w *ErrorWriter) Close() error {
	close(w.feed)
	<-w.done
	return w.writeErr
}

// Written reports how many error records reached the file. Only valid after
// Close.
func (w *ErrorWriter) Written() int { return w.count }
