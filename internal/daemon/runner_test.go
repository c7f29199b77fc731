package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atlanticdynamic/cinder/internal/finitestate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLifecycle records hook invocations in order.
type fakeLifecycle struct {
	mu       sync.Mutex
	calls    []string
	state    string
	initErr  error
	startErr error
	stopErr  error
}

func (f *fakeLifecycle) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeLifecycle) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLifecycle) setState(state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
}

func (f *fakeLifecycle) Init(_ context.Context, _ []string) error {
	f.record("init")
	if f.initErr != nil {
		return f.initErr
	}
	f.setState(finitestate.StateRunning)
	return nil
}

func (f *fakeLifecycle) Start(context.Context) error {
	f.record("start")
	return f.startErr
}

func (f *fakeLifecycle) Stop(context.Context) error {
	f.record("stop")
	if f.stopErr != nil {
		return f.stopErr
	}
	f.setState(finitestate.StateStopped)
	return nil
}

func (f *fakeLifecycle) Destroy(context.Context) error {
	f.record("destroy")
	f.setState(finitestate.StateDestroyed)
	return nil
}

func (f *fakeLifecycle) GetState() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == "" {
		return finitestate.StateNew
	}
	return f.state
}

func (f *fakeLifecycle) GetStateChan(ctx context.Context) <-chan string {
	ch := make(chan string, 1)
	ch <- f.GetState()
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func TestRunner_String(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(&fakeLifecycle{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "daemon.Runner", r.String())
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("drives init and start then stop and destroy on cancel", func(t *testing.T) {
		t.Parallel()
		life := &fakeLifecycle{}
		r, err := NewRunner(life, []string{"app.risor", "x"})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- r.Run(ctx)
		}()

		assert.Eventually(t, func() bool {
			return r.IsRunning()
		}, time.Second, 10*time.Millisecond)

		cancel()

		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("runner did not shut down")
		}

		assert.Equal(t, []string{"init", "start", "stop", "destroy"}, life.Calls())
		assert.Equal(t, finitestate.StateDestroyed, life.GetState())
	})

	t.Run("Stop triggers the shutdown path", func(t *testing.T) {
		t.Parallel()
		life := &fakeLifecycle{}
		r, err := NewRunner(life, nil)
		require.NoError(t, err)

		errCh := make(chan error, 1)
		go func() {
			errCh <- r.Run(context.Background())
		}()

		assert.Eventually(t, func() bool {
			return r.IsRunning()
		}, time.Second, 10*time.Millisecond)

		r.Stop()

		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("runner did not shut down")
		}
	})

	t.Run("init failure aborts the run", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		life := &fakeLifecycle{initErr: boom}
		r, err := NewRunner(life, nil)
		require.NoError(t, err)

		assert.ErrorIs(t, r.Run(context.Background()), boom)
		assert.Equal(t, []string{"init"}, life.Calls())
	})

	t.Run("start failure aborts the run", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		life := &fakeLifecycle{startErr: boom}
		r, err := NewRunner(life, nil)
		require.NoError(t, err)

		assert.ErrorIs(t, r.Run(context.Background()), boom)
		assert.Equal(t, []string{"init", "start"}, life.Calls())
	})

	t.Run("stop failure surfaces", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		life := &fakeLifecycle{stopErr: boom}
		r, err := NewRunner(life, nil)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- r.Run(ctx)
		}()

		assert.Eventually(t, func() bool {
			return r.IsRunning()
		}, time.Second, 10*time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, boom)
		case <-time.After(time.Second):
			t.Fatal("runner did not shut down")
		}
		assert.NotContains(t, life.Calls(), "destroy")
	})
}

func TestRunner_StateDelegation(t *testing.T) {
	t.Parallel()

	life := &fakeLifecycle{}
	r, err := NewRunner(life, nil)
	require.NoError(t, err)

	assert.Equal(t, finitestate.StateNew, r.GetState())
	assert.False(t, r.IsRunning())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := r.GetStateChan(ctx)
	assert.Equal(t, finitestate.StateNew, <-ch)
}
