package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/atlanticdynamic/cinder/internal/engine"
	"github.com/atlanticdynamic/cinder/internal/finitestate"
	"github.com/atlanticdynamic/cinder/internal/opts"
	"github.com/atlanticdynamic/cinder/internal/shell"
	"github.com/mattn/go-isatty"
)

// shellRunner abstracts the interactive shell for the runner.
type shellRunner interface {
	Run(ctx context.Context) error
}

// engineFactory builds the engine after a successful parse.
type engineFactory func(ctx context.Context, cfg engine.Config) (engine.Engine, error)

// shellFactory builds the shell that takes over when no script or
// expression was given, or when the shell was requested.
type shellFactory func(eng engine.Engine, cfg *Config, silent bool) shellRunner

// Runner owns the run configuration, the engine handle, and the loaded
// module, and sequences the lifecycle through its state machine. A single
// external caller is assumed; the runner does not serialize concurrent hook
// invocations.
type Runner struct {
	version   string
	logger    *slog.Logger
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	getenv    func(string) string
	setupLogs func(silent, verbose bool)
	newEngine engineFactory
	newShell  shellFactory

	config *Config
	eng    engine.Engine
	module *engine.Module
	fsm    finitestate.Machine
}

// New creates a Runner with default wiring: the Risor engine, the
// interactive shell, and the process environment.
func New(options ...Option) (*Runner, error) {
	r := &Runner{
		version: "dev",
		logger:  slog.Default().WithGroup("runner"),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		getenv:  os.Getenv,
	}
	for _, opt := range options {
		opt(r)
	}

	if r.newEngine == nil {
		r.newEngine = func(ctx context.Context, cfg engine.Config) (engine.Engine, error) {
			return engine.New(ctx, cfg)
		}
	}
	if r.newShell == nil {
		r.newShell = func(eng engine.Engine, cfg *Config, silent bool) shellRunner {
			return shell.New(eng,
				shell.WithInput(r.stdin),
				shell.WithOutput(r.stdout),
				shell.WithErrOutput(r.stderr),
				shell.WithSilent(silent),
				shell.WithVerbose(cfg.Verbose),
				shell.WithHistoryFile(cfg.HistoryPath),
				shell.WithVersion(r.version),
			)
		}
	}

	machine, err := finitestate.New(r.logger.WithGroup("fsm").Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	r.fsm = machine

	return r, nil
}

// ParseArgs resolves the environment, scans the argument vector, applies
// each option to the configuration, and constructs the engine. The script
// name is the first positional token; everything after it is passed through
// verbatim as script arguments.
func (r *Runner) ParseArgs(ctx context.Context, args []string) error {
	cfg, err := NewConfig(r.getenv)
	if err != nil {
		return err
	}

	idx, err := opts.Parse(args, cfg.apply)
	if err != nil {
		return err
	}
	if idx < len(args) {
		cfg.ScriptName = args[idx]
		cfg.ScriptArgs = args[idx+1:]
	}
	r.config = cfg

	if r.setupLogs != nil {
		r.setupLogs(cfg.Silent, cfg.Verbose)
	}
	if err := r.fsm.Transition(finitestate.StateParsed); err != nil {
		return err
	}

	eng, err := r.newEngine(ctx, engine.Config{
		Home:        cfg.Home,
		ModulePath:  cfg.ModulePath,
		OptLevel:    cfg.OptLevel,
		Debug:       cfg.Debug,
		BootScripts: cfg.BootScripts,
		Policy:      cfg.Policy,
		LogHandler:  r.logger.Handler(),
	})
	if err != nil {
		if errors.Is(err, engine.ErrEngineConstruction) {
			return err
		}
		return fmt.Errorf("%w: %w", engine.ErrEngineConstruction, err)
	}
	r.eng = eng

	return r.fsm.Transition(finitestate.StateEngineReady)
}

// Run is the CLI path: parse, evaluate the expression if any, run the
// script if any, then hand over to the shell when the launch rule says so.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if err := r.ParseArgs(ctx, args); err != nil {
		return err
	}
	cfg := r.config

	if cfg.ExprSet {
		result, err := r.eng.EvaluateExpression(ctx, cfg.Expr)
		if err != nil {
			return err
		}
		r.logger.Debug("Expression evaluated", "result", result)
	}
	if cfg.ScriptName != "" {
		if err := r.eng.RunScript(ctx, cfg.ScriptName, cfg.ScriptArgs); err != nil {
			return err
		}
	}
	if r.shouldRunShell() {
		return r.runShell(ctx)
	}
	return nil
}

// shouldRunShell applies the launch rule: the shell runs when neither a
// script nor an expression was given, or when it was explicitly requested.
func (r *Runner) shouldRunShell() bool {
	cfg := r.config
	return (cfg.ScriptName == "" && !cfg.ExprSet) || cfg.RunShell
}

func (r *Runner) runShell(ctx context.Context) error {
	cfg := r.config
	silent := cfg.Silent
	if !silent {
		// autodetect redirected stdin the way --silent would be given
		silent = !stdinIsTerminal(r.stdin)
	}
	return r.newShell(r.eng, cfg, silent).Run(ctx)
}

// Init is the first daemon entry point: parse, construct, load the script
// module, and invoke its optional init hook with the positional arguments.
func (r *Runner) Init(ctx context.Context, args []string) error {
	if err := r.ParseArgs(ctx, args); err != nil {
		return err
	}
	if r.config.ScriptName == "" {
		return ErrDaemonScriptRequired
	}

	mod, err := r.eng.LoadModule(ctx, r.config.ScriptName)
	if err != nil {
		return err
	}
	r.module = mod
	if err := r.fsm.Transition(finitestate.StateModuleLoaded); err != nil {
		return err
	}

	if err := r.invokeHook(ctx, "init", r.config.ScriptArgs); err != nil {
		return err
	}
	return r.fsm.Transition(finitestate.StateRunning)
}

// Start invokes the optional start hook. An external supervisor may call it
// repeatedly after Init; it does not change the formal state. Without a
// loaded module it is a no-op.
func (r *Runner) Start(ctx context.Context) error {
	if r.module == nil {
		return nil
	}
	return r.invokeHook(ctx, "start", nil)
}

// Stop invokes the optional stop hook. Without a loaded module it is a
// no-op.
func (r *Runner) Stop(ctx context.Context) error {
	if r.module == nil {
		return nil
	}
	if err := r.invokeHook(ctx, "stop", nil); err != nil {
		return err
	}
	return r.fsm.Transition(finitestate.StateStopped)
}

// Destroy invokes the optional destroy hook and invalidates the handle; the
// runner must not be used afterwards.
func (r *Runner) Destroy(ctx context.Context) error {
	if r.module == nil {
		return nil
	}
	err := r.invokeHook(ctx, "destroy", nil)
	r.module = nil
	if closeErr := r.eng.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return r.fsm.Transition(finitestate.StateDestroyed)
}

// invokeHook calls one lifecycle function on the loaded module. A module
// that does not define the hook is silently tolerated.
func (r *Runner) invokeHook(ctx context.Context, hook string, args []string) error {
	err := r.eng.Invoke(ctx, r.module, hook, args)
	if errors.Is(err, engine.ErrNoSuchHook) {
		r.logger.Debug("Lifecycle hook not implemented by module", "hook", hook)
		return nil
	}
	return err
}

// Verbose reports whether verbose diagnostics were requested. Safe to call
// before or after a failed parse.
func (r *Runner) Verbose() bool {
	return r.config != nil && r.config.Verbose
}

// Config returns the resolved run configuration, nil before ParseArgs.
func (r *Runner) Config() *Config {
	return r.config
}

func stdinIsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
