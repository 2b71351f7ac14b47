// Package log configures the process-wide slog logger.
//
// Options come from the config file or from environment variables:
//   - FOLIO_LOG_LEVEL=debug|info|warn|error
//   - FOLIO_LOG_FORMAT=text|json
//   - FOLIO_LOG_FILE=<path> (adds a rotating JSON file sink)
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
type Options struct {
	Level     string
	Format    string // "text" or "json"
	AddSource bool
	File      string
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *slog.Logger
	fileSink      io.Closer
)

// L returns the application logger, initializing it from env on first use.
func L() *slog.Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}
	return Init(FromEnv())
}

// Init builds the logger, installs it as slog.Default and returns it.
func Init(opts Options) *slog.Logger {
	lvl := ParseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(os.Stderr, hopts)
	} else {
		console = slog.NewTextHandler(os.Stderr, hopts)
	}

	handler := console
	var sink io.Closer
	if f := strings.TrimSpace(opts.File); f != "" {
		w := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		sink = w
		handler = fanout{console, slog.NewJSONHandler(w, hopts)}
	}

	logger := slog.New(handler).With(slog.String("app", "folio"))

	defaultMu.Lock()
	if fileSink != nil {
		_ = fileSink.Close()
	}
	fileSink = sink
	defaultLogger = logger
	defaultMu.Unlock()
	slog.SetDefault(logger)
	return logger
}

// Close flushes and closes the file sink, if any.
func Close() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if fileSink == nil {
		return nil
	}
	err := fileSink.Close()
	fileSink = nil
	return err
}

// FromEnv builds Options from FOLIO_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("FOLIO_LOG_LEVEL", "info"),
		Format:    getenv("FOLIO_LOG_FORMAT", "text"),
		AddSource: strings.EqualFold(os.Getenv("FOLIO_LOG_SOURCE"), "true"),
		File:      os.Getenv("FOLIO_LOG_FILE"),
	}
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// fanout sends each record to every handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
