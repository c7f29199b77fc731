// Package daemon adapts the lifecycle runner to a go-supervisor runnable so
// an external supervisor drives the init/start/stop/destroy hooks.
package daemon

import (
	"context"
	"log/slog"

	"github.com/atlanticdynamic/cinder/internal/finitestate"
	"github.com/robbyt/go-supervisor/supervisor"
)

var (
	_ supervisor.Runnable  = (*Runner)(nil)
	_ supervisor.Stateable = (*Runner)(nil)
)

// lifecycle is the slice of the runner the daemon drives.
type lifecycle interface {
	Init(ctx context.Context, args []string) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Destroy(ctx context.Context) error
	GetState() string
	GetStateChan(ctx context.Context) <-chan string
}

// Runner drives one lifecycle through the supervisor contract: Run blocks
// between start and stop, Stop triggers the shutdown path.
type Runner struct {
	args   []string
	life   lifecycle
	logger *slog.Logger

	runCtx    context.Context
	runCancel context.CancelFunc
	parentCtx context.Context
}

// NewRunner creates a daemon runnable for the given lifecycle and argument
// vector.
func NewRunner(life lifecycle, args []string, opts ...Option) (*Runner, error) {
	r := &Runner{
		args:      args,
		life:      life,
		logger:    slog.Default().WithGroup("daemon.Runner"),
		parentCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// String implements the supervisor.Runnable interface
func (r *Runner) String() string {
	return "daemon.Runner"
}

// Run implements the supervisor.Runnable interface. It performs init and
// start, blocks until the context is canceled, then stops and destroys the
// loaded module.
func (r *Runner) Run(ctx context.Context) error {
	r.runCtx, r.runCancel = context.WithCancel(ctx)
	defer r.runCancel()

	if err := r.life.Init(r.runCtx, r.args); err != nil {
		return err
	}
	if err := r.life.Start(r.runCtx); err != nil {
		return err
	}
	r.logger.Debug("Daemon running", "state", r.life.GetState())

	select {
	case <-r.parentCtx.Done():
		r.logger.Debug("Parent context canceled")
	case <-r.runCtx.Done():
		r.logger.Debug("Run context canceled")
	}

	// shutdown hooks still need a live context
	stopCtx := context.WithoutCancel(r.runCtx)
	if err := r.life.Stop(stopCtx); err != nil {
		return err
	}
	return r.life.Destroy(stopCtx)
}

// Stop implements the supervisor.Runnable interface
func (r *Runner) Stop() {
	r.logger.Debug("Stopping daemon")
	if r.runCancel != nil {
		r.runCancel()
	}
}

// GetState implements the supervisor.Stateable interface
func (r *Runner) GetState() string {
	return r.life.GetState()
}

// GetStateChan implements the supervisor.Stateable interface
func (r *Runner) GetStateChan(ctx context.Context) <-chan string {
	return r.life.GetStateChan(ctx)
}

// IsRunning implements the supervisor.Stateable interface
func (r *Runner) IsRunning() bool {
	return r.life.GetState() == finitestate.StateRunning
}
