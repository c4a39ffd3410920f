package observability

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// LoggerOptions holds configuration for the console logger.
type LoggerOptions struct {
	Level           string
	Format          string
	ReportTimestamp bool
	Prefix          string
}

// NewLogger creates a leveled console logger writing to w (stderr when nil).
func NewLogger(w io.Writer, opts LoggerOptions) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "tm"
	}
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLogLevel(opts.Level),
		Formatter:       ParseLogFormatter(opts.Format),
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          prefix,
	})
}

// ParseLogLevel parses a string log level to a charmbracelet/log Level.
// Unknown levels fall back to warn so a typo never floods the terminal.
func ParseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// ParseLogFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseLogFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
