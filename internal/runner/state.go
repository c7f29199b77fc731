package runner

import "context"

// GetState returns the current lifecycle state.
func (r *Runner) GetState() string {
	return r.fsm.GetState()
}

// GetStateChan returns a channel emitting lifecycle state changes.
// Canceling ctx unsubscribes the channel.
func (r *Runner) GetStateChan(ctx context.Context) <-chan string {
	return r.fsm.GetStateChan(ctx)
}
