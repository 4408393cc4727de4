package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
)

// DefaultLogger writes through a log/slog handler. Loggers derived with
// WithFields share the level of their parent.
type DefaultLogger struct {
	slog  *slog.Logger
	level *slog.LevelVar
	exit  func(int)
}

// NewDefaultLogger creates a text logger on stderr at info level. Stdout is
// left to the terminal display.
func NewDefaultLogger() *DefaultLogger {
	return NewLogger(os.Stderr, InfoLevel, false)
}

// NewLogger creates a logger writing text or JSON records to w
func NewLogger(w io.Writer, level Level, json bool) *DefaultLogger {
	lv := new(slog.LevelVar)
	lv.Set(toSlogLevel(level))

	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return &DefaultLogger{slog: slog.New(h), level: lv, exit: os.Exit}
}

func toSlogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel, FatalLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// attrs flattens fields in key order so output is stable
func attrs(fields []Fields) []any {
	n := 0
	for _, f := range fields {
		n += len(f)
	}
	if n == 0 {
		return nil
	}

	keys := make([]string, 0, n)
	merged := make(Fields, n)
	for _, f := range fields {
		for k, v := range f {
			if _, seen := merged[k]; !seen {
				keys = append(keys, k)
			}
			merged[k] = v
		}
	}
	sort.Strings(keys)

	out := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, merged[k]))
	}
	return out
}

func (d *DefaultLogger) log(level slog.Level, err error, msg string, fields []Fields) {
	if level < d.level.Level() {
		return
	}
	args := attrs(fields)
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	d.slog.Log(context.Background(), level, msg, args...)
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(slog.LevelDebug, nil, msg, fields)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(slog.LevelInfo, nil, msg, fields)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(slog.LevelWarn, nil, msg, fields)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(slog.LevelError, err, msg, fields)
}

// Fatal logs at error level and exits the process
func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(slog.LevelError, err, msg, append(fields, Fields{"fatal": true}))
	d.exit(1)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	args := attrs([]Fields{fields})
	if len(args) == 0 {
		return d
	}
	return &DefaultLogger{
		slog:  d.slog.With(args...),
		level: d.level,
		exit:  d.exit,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level.Set(toSlogLevel(level))
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
