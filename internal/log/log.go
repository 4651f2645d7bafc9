// Package log builds the structured zerolog loggers used across the wallet.
package log

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseLevel parses a level name. Unknown names fall back to error.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "disabled":
		return zerolog.Disabled
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.ErrorLevel
	}
}

// New creates a logger writing to w in the given format.
func New(w io.Writer, level, format string) zerolog.Logger {
	if format != FormatJSON {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
			NoColor:    true,
		}
	}
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// NewFile creates a logger appending to the file at path in the given
// format. A leading "~/" is expanded to the user's home directory.
func NewFile(path, level, format string) (zerolog.Logger, io.Closer, error) {
	if ParseLevel(level) == zerolog.Disabled || path == "" {
		return Nop(), nopCloser{}, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Nop(), nil, err
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return Nop(), nil, err
	}

	// #nosec G304 -- log file path is from validated config
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return Nop(), nil, err
	}

	return New(f, level, format), f, nil
}

// Nop returns a logger that discards all output.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// WithComponent returns l tagged with a component field.
func WithComponent(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
