// Package shell implements the interactive read-eval-print loop launched
// when no script or expression was given, or when requested explicitly.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atlanticdynamic/cinder/internal/engine"
	"github.com/atlanticdynamic/cinder/internal/report"
	"github.com/charmbracelet/lipgloss"
)

// DefaultHistoryName is the history file created in the user's home
// directory when no custom path was given.
const DefaultHistoryName = ".cinder-history"

var (
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// Shell reads expressions line by line, evaluates them on the engine, and
// prints results. Evaluation failures are reported and the loop continues;
// the shell owns its own recovery.
type Shell struct {
	eng         engine.Engine
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	silent      bool
	verbose     bool
	historyPath string
	version     string
	logger      *slog.Logger
}

// New creates a shell bound to eng.
func New(eng engine.Engine, options ...Option) *Shell {
	s := &Shell{
		eng:     eng,
		in:      os.Stdin,
		out:     os.Stdout,
		errOut:  os.Stderr,
		version: "dev",
		logger:  slog.Default().WithGroup("shell"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Run executes the read-eval-print loop until EOF or an exit command.
func (s *Shell) Run(ctx context.Context) error {
	history := s.openHistory()
	if history != nil {
		defer history.Close()
	}

	if !s.silent {
		fmt.Fprintln(s.out, bannerStyle.Render("cinder "+s.version))
	}

	scanner := bufio.NewScanner(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.silent {
			fmt.Fprint(s.out, promptStyle.Render(">>")+" ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if history != nil {
			fmt.Fprintln(history, line)
		}

		result, err := s.eng.EvaluateExpression(ctx, line)
		if err != nil {
			report.Report(s.errOut, err, s.verbose)
			continue
		}
		if !s.silent && result != nil {
			fmt.Fprintf(s.out, "%v\n", result)
		}
	}
	return scanner.Err()
}

// openHistory opens the history file for appending. History is best-effort:
// any failure disables it for the session.
func (s *Shell) openHistory() *os.File {
	path := s.historyPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			s.logger.Debug("No home directory, history disabled", "error", err)
			return nil
		}
		path = filepath.Join(home, DefaultHistoryName)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		s.logger.Debug("Failed to open history file", "path", path, "error", err)
		return nil
	}
	return f
}
