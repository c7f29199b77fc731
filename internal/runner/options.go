package runner

import (
	"io"
	"log/slog"
)

type Option func(*Runner)

// WithLogger sets a custom logger for the Runner instance.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithVersion sets the version string printed by the shell banner and the
// version option.
func WithVersion(version string) Option {
	return func(r *Runner) {
		r.version = version
	}
}

// WithStdin sets the reader the shell and terminal detection use.
func WithStdin(in io.Reader) Option {
	return func(r *Runner) {
		r.stdin = in
	}
}

// WithStdout sets the writer for shell output.
func WithStdout(out io.Writer) Option {
	return func(r *Runner) {
		r.stdout = out
	}
}

// WithStderr sets the writer for diagnostics.
func WithStderr(out io.Writer) Option {
	return func(r *Runner) {
		r.stderr = out
	}
}

// WithGetenv overrides environment lookup, used to isolate tests.
func WithGetenv(getenv func(string) string) Option {
	return func(r *Runner) {
		r.getenv = getenv
	}
}

// WithLogSetup installs the hook that reconfigures process logging once the
// silent and verbose flags are known.
func WithLogSetup(setup func(silent, verbose bool)) Option {
	return func(r *Runner) {
		r.setupLogs = setup
	}
}

// WithEngineFactory overrides engine construction.
func WithEngineFactory(factory engineFactory) Option {
	return func(r *Runner) {
		r.newEngine = factory
	}
}

// WithShellFactory overrides shell construction.
func WithShellFactory(factory shellFactory) Option {
	return func(r *Runner) {
		r.newShell = factory
	}
}
