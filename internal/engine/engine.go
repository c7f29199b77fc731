// Package engine defines the boundary between the cinder front-end and the
// embedded scripting runtime, and provides the Risor implementation built
// on go-polyscript.
package engine

import (
	"context"
	"log/slog"

	"github.com/deepnoodle-ai/risor/v2/pkg/vm"

	"github.com/atlanticdynamic/cinder/internal/sandbox"
)

// Module is a handle to a loaded script module. It is produced by
// LoadModule and consumed by Invoke; the zero value is not usable. The
// handle retains the virtual machine the module's top-level code ran on, so
// globals set by one lifecycle function stay visible to the next.
type Module struct {
	Name string
	Path string
	vm   *vm.VirtualMachine
}

// Engine is the scripting runtime consumed by the lifecycle runner.
type Engine interface {
	// EvaluateExpression compiles and evaluates a single expression,
	// returning its value.
	EvaluateExpression(ctx context.Context, expr string) (any, error)

	// RunScript resolves name against the home directory and module search
	// path and runs the script with args available to it.
	RunScript(ctx context.Context, name string, args []string) error

	// LoadModule resolves and compiles the named module and runs its
	// top-level code once.
	LoadModule(ctx context.Context, name string) (*Module, error)

	// Invoke calls a function defined at the top level of the module.
	// ErrNoSuchHook is returned when the module does not define it; args
	// are exposed to the function as a single list argument.
	Invoke(ctx context.Context, mod *Module, fn string, args []string) error

	// Close releases the engine.
	Close() error
}

// Config carries the settings an engine is constructed from. It is derived
// from the run configuration after option parsing.
type Config struct {
	Home        string
	ModulePath  []string
	OptLevel    int
	Debug       bool
	BootScripts []string
	Policy      *sandbox.Policy
	LogHandler  slog.Handler
}
