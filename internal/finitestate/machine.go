// Package finitestate wraps the go-fsm state machine with the lifecycle
// states of a cinder run: parse, engine construction, module load, and the
// daemon phases.
package finitestate

import (
	"context"
	"log/slog"
	"time"

	fsm "github.com/robbyt/go-fsm/v2"
	"github.com/robbyt/go-fsm/v2/hooks"
	"github.com/robbyt/go-fsm/v2/transitions"
)

// Lifecycle state constants. Destroyed is terminal; fatal errors exit the
// process instead of transitioning.
const (
	StateNew          = "new"
	StateParsed       = "parsed"
	StateEngineReady  = "engine_ready"
	StateModuleLoaded = "module_loaded"
	StateRunning      = "running"
	StateStopped      = "stopped"
	StateDestroyed    = "destroyed"
)

// LifecycleTransitions defines the valid state transitions for a run. The
// start hook does not appear: invoking it leaves the formal state unchanged.
var LifecycleTransitions = map[string][]string{
	StateNew:          {StateParsed},
	StateParsed:       {StateEngineReady},
	StateEngineReady:  {StateModuleLoaded},
	StateModuleLoaded: {StateRunning},
	StateRunning:      {StateStopped},
	StateStopped:      {StateDestroyed},
	StateDestroyed:    {},
}

// broadcastTimeout bounds state-change delivery so late updates still reach
// subscribers during shutdown.
const broadcastTimeout = 5 * time.Second

// Machine is the interface the lifecycle runner programs against. The
// abstraction keeps the runner testable against a fake machine.
type Machine interface {
	// Transition attempts to transition the state machine to the specified state.
	Transition(state string) error

	// TransitionBool attempts to transition the state machine to the specified state.
	TransitionBool(state string) bool

	// GetState returns the current state of the state machine.
	GetState() string

	// GetStateChan returns a channel that emits the state machine's state
	// whenever it changes. Canceling ctx unsubscribes the channel.
	GetStateChan(ctx context.Context) <-chan string
}

// LifecycleFSM embeds fsm.Machine and adapts its subscription-based state
// broadcasts to the channel-returning shape the runner and the supervisor
// consume.
type LifecycleFSM struct {
	*fsm.Machine
}

func (m *LifecycleFSM) GetStateChan(ctx context.Context) <-chan string {
	ch := make(chan string, 16)
	if err := m.Machine.GetStateChan(ctx, ch); err != nil {
		close(ch)
	}
	return ch
}

// New creates a lifecycle state machine starting in StateNew. The hook
// registry exists solely to back state-change broadcasts.
func New(handler slog.Handler) (Machine, error) {
	trans, err := transitions.New(LifecycleTransitions)
	if err != nil {
		return nil, err
	}
	registry, err := hooks.NewRegistry(
		hooks.WithLogHandler(handler),
		hooks.WithTransitions(trans),
	)
	if err != nil {
		return nil, err
	}

	machine, err := fsm.New(StateNew, trans,
		fsm.WithLogHandler(handler),
		fsm.WithCallbackRegistry(registry),
		fsm.WithBroadcastTimeout(broadcastTimeout),
	)
	if err != nil {
		return nil, err
	}
	return &LifecycleFSM{Machine: machine}, nil
}
