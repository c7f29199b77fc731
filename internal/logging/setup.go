// Package logging configures the process-wide slog default used by the
// cinder binaries.
package logging

import (
	"io"
	"log/slog"
	"os"

	charm "github.com/charmbracelet/log"
)

// FlagLevel maps the silent/verbose command-line flags to a log level.
// Verbose wins when both are set, matching its diagnostic intent.
func FlagLevel(silent, verbose bool) string {
	switch {
	case verbose:
		return "debug"
	case silent:
		return "error"
	default:
		return "info"
	}
}

// NewHandler builds a text slog handler writing to w at the given level.
func NewHandler(level string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}

	lvl := charm.InfoLevel
	reportTimestamp := false
	switch level {
	case "debug":
		lvl = charm.DebugLevel
		reportTimestamp = true
	case "info":
		lvl = charm.InfoLevel
	case "warn", "warning":
		lvl = charm.WarnLevel
	case "error":
		lvl = charm.ErrorLevel
	}

	return charm.NewWithOptions(w, charm.Options{
		ReportTimestamp: reportTimestamp,
		Level:           lvl,
	})
}

// Setup installs a handler at the given level as the slog default.
func Setup(level string) {
	slog.SetDefault(slog.New(NewHandler(level, nil)))
}
