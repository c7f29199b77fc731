package shell

import (
	"io"
	"log/slog"
)

type Option func(*Shell)

// WithInput sets the reader expressions are read from.
func WithInput(in io.Reader) Option {
	return func(s *Shell) {
		s.in = in
	}
}

// WithOutput sets the writer for prompts and results.
func WithOutput(out io.Writer) Option {
	return func(s *Shell) {
		s.out = out
	}
}

// WithErrOutput sets the writer evaluation failures are reported to.
func WithErrOutput(out io.Writer) Option {
	return func(s *Shell) {
		s.errOut = out
	}
}

// WithSilent disables the banner, prompt, and result echo.
func WithSilent(silent bool) Option {
	return func(s *Shell) {
		s.silent = silent
	}
}

// WithVerbose includes native failure traces in reported errors.
func WithVerbose(verbose bool) Option {
	return func(s *Shell) {
		s.verbose = verbose
	}
}

// WithHistoryFile sets a custom history file path.
func WithHistoryFile(path string) Option {
	return func(s *Shell) {
		s.historyPath = path
	}
}

// WithVersion sets the version shown in the banner.
func WithVersion(version string) Option {
	return func(s *Shell) {
		s.version = version
	}
}

// WithLogger sets a custom logger for the shell.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}
