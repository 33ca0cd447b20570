// Package log builds the slog logger shared by every p4status command.
//
// Records always go to stderr at the configured level. When a debug file is
// set, every record down to debug level is also appended to it through a
// rotating writer.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level applies to the stderr handler.
	Level slog.Level
	// DebugFile enables the rotating debug log when non-empty.
	DebugFile string
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
	// NoColor forces plain output on stderr.
	NoColor bool
}

// Logger is a slog.Logger that owns its debug file.
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
}

// ParseLevel maps a config or flag value onto a slog level. The empty
// string selects fallback.
func ParseLevel(s string, fallback slog.Level) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return fallback, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return fallback, fmt.Errorf("unknown log level %q", s)
	}
}

// New builds the logger described by opts.
func New(opts Options) (*Logger, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	stderrHandler := tint.NewHandler(stderr, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor || !colorable(stderr),
	})

	if opts.DebugFile == "" {
		return &Logger{Logger: slog.New(stderrHandler)}, nil
	}

	if dir := filepath.Dir(opts.DebugFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	file := &lumberjack.Logger{
		Filename:   opts.DebugFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	fileHandler := tint.NewHandler(file, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02 15:04:05.000000",
		NoColor:    true,
	})

	return &Logger{
		Logger: slog.New(&MultiHandler{handlers: []slog.Handler{fileHandler, stderrHandler}}),
		file:   file,
	}, nil
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// Close flushes and closes the debug file if one is open.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func colorable(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
