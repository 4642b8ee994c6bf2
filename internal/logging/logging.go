package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dmsqlkit/dmtrace/internal/config"
)

// Guard owns the file sink behind the logger. Hold it for the lifetime of
// the process and Close it on the way out; it lives in main, not in a
// package-level variable.
type Guard struct {
	closer io.Closer
}

// Close releases the file sink. Safe on a guard without one.
func (g *Guard) Close() error {
	if g == nil || g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

// Setup builds the process logger: text to stdout and/or JSON to a rolling
// file, fanned out with slog-multi. With both sinks disabled the logger
// discards everything.
func Setup(cfg config.LogConfig) (*slog.Logger, *Guard, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	guard := &Guard{}
	var handlers []slog.Handler

	if cfg.Stdout {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, opts))
	}
	if cfg.File != "" {
		roller := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		guard.closer = roller
		handlers = append(handlers, slog.NewJSONHandler(roller, opts))
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.NewTextHandler(io.Discard, opts)), guard, nil
	case 1:
		return slog.New(handlers[0]), guard, nil
	default:
		return slog.New(slogmulti.Fanout(handlers...)), guard, nil
	}
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
