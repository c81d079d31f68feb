// Package logger wraps zerolog.Logger with the constructors shelf needs.
//
// The terminal UI owns stdout, so the TUI logs to a file via NewFile while
// the catalog server logs JSON to stdout via New. Request-scoped loggers are
// stored in the context by the catalog middleware and recovered with
// FromContext.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger embeds zerolog.Logger so the full zerolog API is available.
type Logger struct {
	zerolog.Logger
}

// New returns a JSON logger tagged with role that writes to w.
func New(role string, w io.Writer, level zerolog.Level) *Logger {
	if w == nil {
		w = os.Stdout
	}
	l := zerolog.New(w).Level(level).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{l}
}

// NewFile opens (or creates) path in append mode and logs to it. The
// returned close func releases the file.
func NewFile(role, path string, level zerolog.Level) (*Logger, func() error, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Nop(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(trimmed, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(role, file, level), file.Close, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithField returns a child logger carrying an extra string field.
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{l.Logger.With().Str(key, value).Logger()}
}

// FromContext returns the logger stored in ctx by zerolog's WithContext, or
// a disabled logger when none was stored.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
