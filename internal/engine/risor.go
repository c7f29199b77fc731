package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	risorlang "github.com/deepnoodle-ai/risor/v2"
	"github.com/deepnoodle-ai/risor/v2/pkg/object"
	risorvm "github.com/deepnoodle-ai/risor/v2/pkg/vm"
	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-polyscript/engines/risor"
	"github.com/robbyt/go-polyscript/platform/constants"
	"github.com/robbyt/go-polyscript/platform/data"
	"github.com/robbyt/go-polyscript/platform/script/loader"

	"github.com/atlanticdynamic/cinder/internal/sandbox"
)

// RisorEngine evaluates Risor scripts. Expressions and whole scripts run
// through go-polyscript evaluators; loaded modules keep their own virtual
// machine so lifecycle functions share state.
type RisorEngine struct {
	id     uuid.UUID
	cfg    Config
	logger *slog.Logger
}

var _ Engine = (*RisorEngine)(nil)

// New constructs an engine from cfg and runs the configured bootstrap
// scripts in command-line order. A bootstrap failure is an engine
// construction error.
func New(ctx context.Context, cfg Config) (*RisorEngine, error) {
	handler := cfg.LogHandler
	if handler == nil {
		handler = slog.Default().Handler()
	}

	id := uuid.Must(uuid.NewV6())
	e := &RisorEngine{
		id:  id,
		cfg: cfg,
		logger: slog.New(handler).With(
			"engine_id", id.String(),
			"optlevel", cfg.OptLevel,
			"debug", cfg.Debug,
		),
	}
	e.logger.Debug("Constructing engine", "home", cfg.Home, "module_path", cfg.ModulePath)

	for _, script := range cfg.BootScripts {
		if err := e.RunScript(ctx, script, nil); err != nil {
			return nil, fmt.Errorf("%w: bootstrap script %s: %w", ErrEngineConstruction, script, err)
		}
	}
	return e, nil
}

// String returns a short identifier for log output.
func (e *RisorEngine) String() string {
	return "engine.Risor/" + e.id.String()
}

// EvaluateExpression compiles and evaluates a single expression.
func (e *RisorEngine) EvaluateExpression(ctx context.Context, expr string) (any, error) {
	ld, err := loader.NewFromString(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to load expression: %w", err)
	}
	result, err := e.eval(ctx, ld, nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RunScript resolves name and runs the script. The positional args are
// exposed to the script as the "args" entry of its ctx global.
func (e *RisorEngine) RunScript(ctx context.Context, name string, args []string) error {
	ld, err := e.loaderFor(name)
	if err != nil {
		return err
	}
	_, err = e.eval(ctx, ld, args)
	return err
}

// LoadModule resolves and compiles the named module, then runs its
// top-level code once on a dedicated virtual machine. The machine is
// retained on the returned handle: globals it defines persist across
// subsequent Invoke calls.
func (e *RisorEngine) LoadModule(ctx context.Context, name string) (*Module, error) {
	path, err := e.resolve(name)
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %s: %w", name, err)
	}

	env := moduleEnv(nil)
	code, err := risorlang.Compile(ctx, string(source),
		risorlang.WithEnv(env),
		risorlang.WithFilename(path),
	)
	if err != nil {
		return nil, newScriptError(err, true)
	}
	machine, err := risorvm.New(code, risorvm.WithGlobals(env))
	if err != nil {
		return nil, fmt.Errorf("failed to create module vm for %s: %w", name, err)
	}
	if err := machine.Run(ctx); err != nil {
		return nil, newScriptError(err, false)
	}

	e.logger.Debug("Module loaded", "module", name, "path", path)
	return &Module{Name: name, Path: path, vm: machine}, nil
}

// Invoke calls a function defined at the top level of the module on the
// module's retained virtual machine. A module that does not define the name
// as a function yields ErrNoSuchHook. Positional args are passed through as
// a single list when the function declares a parameter for them.
func (e *RisorEngine) Invoke(ctx context.Context, mod *Module, fn string, args []string) error {
	if mod == nil || mod.vm == nil {
		return fmt.Errorf("no module loaded")
	}

	obj, err := mod.vm.Get(fn)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoSuchHook, fn)
	}
	closure, ok := obj.(*object.Closure)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchHook, fn)
	}

	var callArgs []object.Object
	if closure.ParameterCount() > 0 {
		callArgs = []object.Object{object.NewStringList(args)}
	}
	if _, err := mod.vm.Call(ctx, closure, callArgs); err != nil {
		return newScriptError(err, false)
	}
	return nil
}

// Close releases the engine. Evaluators hold no external resources, so this
// only invalidates the handle for log purposes.
func (e *RisorEngine) Close() error {
	e.logger.Debug("Engine closed")
	return nil
}

// moduleEnv builds the global environment a module compiles and runs
// against: the standard builtins plus the ctx input map, matching what the
// go-polyscript evaluators expose to expressions and scripts.
func moduleEnv(args []string) map[string]any {
	scriptArgs := make([]any, len(args))
	for i, a := range args {
		scriptArgs[i] = a
	}
	env := risorlang.Builtins()
	env["ctx"] = map[string]any{"args": scriptArgs}
	return env
}

// eval compiles the loaded source and evaluates it with args exposed
// through the script's ctx global. Compile and runtime failures are
// normalized into ScriptErrors.
func (e *RisorEngine) eval(ctx context.Context, ld loader.Loader, args []string) (any, error) {
	eval, err := risor.FromRisorLoader(e.logger.Handler(), ld)
	if err != nil {
		return nil, newScriptError(err, true)
	}

	enriched, err := withScriptData(ctx, args)
	if err != nil {
		return nil, err
	}
	result, err := eval.Eval(enriched)
	if err != nil {
		return nil, newScriptError(err, false)
	}
	return result.Interface(), nil
}

// withScriptData enriches ctx with the data the script reads from its ctx
// global.
func withScriptData(ctx context.Context, args []string) (context.Context, error) {
	scriptArgs := make([]any, len(args))
	for i, a := range args {
		scriptArgs[i] = a
	}
	provider := data.NewContextProvider(constants.EvalData)
	enriched, err := provider.AddDataToContext(ctx, map[string]any{"args": scriptArgs})
	if err != nil {
		return nil, fmt.Errorf("failed to add script data: %w", err)
	}
	return enriched, nil
}

// loaderFor builds a loader for name: http(s) URLs load remotely when the
// policy permits, anything else resolves against the local search path.
func (e *RisorEngine) loaderFor(name string) (loader.Loader, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		if !e.cfg.Policy.AllowHTTP() {
			return nil, fmt.Errorf("%w: http loader %s", sandbox.ErrPolicyViolation, name)
		}
		return loader.NewFromHTTP(name)
	}
	path, err := e.resolve(name)
	if err != nil {
		return nil, err
	}
	return loader.NewFromDisk(path)
}

// resolve maps a script name to a local file: the name itself, then the
// home directory, then each module search path entry, first hit wins. The
// result is absolute; the disk loader refuses relative paths.
func (e *RisorEngine) resolve(name string) (string, error) {
	candidates := []string{name}
	if e.cfg.Home != "" {
		candidates = append(candidates, filepath.Join(e.cfg.Home, name))
	}
	for _, dir := range e.cfg.ModulePath {
		candidates = append(candidates, filepath.Join(dir, name))
	}

	for _, cand := range candidates {
		info, err := os.Stat(cand)
		if err != nil || info.IsDir() {
			continue
		}
		if !e.cfg.Policy.AllowPath(cand) {
			return "", fmt.Errorf("%w: %s", sandbox.ErrPolicyViolation, cand)
		}
		abs, err := filepath.Abs(cand)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", cand, err)
		}
		return abs, nil
	}
	return "", fmt.Errorf("%w: %s", ErrModuleNotFound, name)
}
