package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/atlanticdynamic/cinder/internal/engine"
	"github.com/atlanticdynamic/cinder/internal/finitestate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubShell records whether the shell was launched.
type stubShell struct {
	ran bool
}

func (s *stubShell) Run(context.Context) error {
	s.ran = true
	return nil
}

type testHarness struct {
	runner *Runner
	eng    *engine.MockEngine
	shell  *stubShell
}

func newHarness(t *testing.T, options ...Option) *testHarness {
	t.Helper()
	h := &testHarness{
		eng:   &engine.MockEngine{},
		shell: &stubShell{},
	}
	base := []Option{
		WithGetenv(envWithHome(t.TempDir())),
		WithEngineFactory(func(context.Context, engine.Config) (engine.Engine, error) {
			return h.eng, nil
		}),
		WithShellFactory(func(engine.Engine, *Config, bool) shellRunner {
			return h.shell
		}),
	}
	r, err := New(append(base, options...)...)
	require.NoError(t, err)
	h.runner = r
	return h
}

func TestRunner_ParseArgs(t *testing.T) {
	t.Parallel()

	t.Run("end to end option scenario", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		err := h.runner.ParseArgs(t.Context(), []string{"-o", "3", "-i", "script.risor", "x", "y"})
		require.NoError(t, err)

		cfg := h.runner.Config()
		assert.Equal(t, 3, cfg.OptLevel)
		assert.True(t, cfg.RunShell)
		assert.Equal(t, "script.risor", cfg.ScriptName)
		assert.Equal(t, []string{"x", "y"}, cfg.ScriptArgs)
		assert.Equal(t, finitestate.StateEngineReady, h.runner.GetState())
	})

	t.Run("tokens after the script are never options", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		err := h.runner.ParseArgs(t.Context(), []string{"script.risor", "-o", "99"})
		require.NoError(t, err)

		cfg := h.runner.Config()
		assert.Equal(t, "script.risor", cfg.ScriptName)
		assert.Equal(t, []string{"-o", "99"}, cfg.ScriptArgs)
		assert.Equal(t, DefaultOptLevel, cfg.OptLevel)
	})

	t.Run("help stops processing regardless of later tokens", func(t *testing.T) {
		t.Parallel()
		factoryCalled := false
		h := newHarness(t, WithEngineFactory(func(context.Context, engine.Config) (engine.Engine, error) {
			factoryCalled = true
			return &engine.MockEngine{}, nil
		}))

		err := h.runner.ParseArgs(t.Context(), []string{"-h", "--bogus", "script.risor"})
		assert.ErrorIs(t, err, ErrHelpRequested)
		assert.False(t, factoryCalled)
		assert.Equal(t, finitestate.StateNew, h.runner.GetState())
	})

	t.Run("unknown option reported before engine construction", func(t *testing.T) {
		t.Parallel()
		factoryCalled := false
		h := newHarness(t, WithEngineFactory(func(context.Context, engine.Config) (engine.Engine, error) {
			factoryCalled = true
			return &engine.MockEngine{}, nil
		}))

		err := h.runner.ParseArgs(t.Context(), []string{"--bogus"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--bogus")
		assert.False(t, factoryCalled)
	})

	t.Run("engine construction failure is typed", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		h := newHarness(t, WithEngineFactory(func(context.Context, engine.Config) (engine.Engine, error) {
			return nil, boom
		}))

		err := h.runner.ParseArgs(t.Context(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrEngineConstruction)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("configuration reaches the engine factory", func(t *testing.T) {
		t.Parallel()
		var got engine.Config
		h := newHarness(t, WithEngineFactory(func(_ context.Context, cfg engine.Config) (engine.Engine, error) {
			got = cfg
			return &engine.MockEngine{}, nil
		}))

		err := h.runner.ParseArgs(t.Context(), []string{"-o", "5", "-d", "-b", "a.risor", "-b", "b.risor"})
		require.NoError(t, err)
		assert.Equal(t, 5, got.OptLevel)
		assert.True(t, got.Debug)
		assert.Equal(t, []string{"a.risor", "b.risor"}, got.BootScripts)
	})

	t.Run("log setup hook receives the flags", func(t *testing.T) {
		t.Parallel()
		var silent, verbose bool
		h := newHarness(t, WithLogSetup(func(s, v bool) {
			silent, verbose = s, v
		}))

		require.NoError(t, h.runner.ParseArgs(t.Context(), []string{"-sV"}))
		assert.True(t, silent)
		assert.True(t, verbose)
	})
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("expression evaluated before script", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		order := make([]string, 0, 2)
		h.eng.On("EvaluateExpression", mock.Anything, "1+1").
			Run(func(mock.Arguments) { order = append(order, "expr") }).
			Return(int64(2), nil).Once()
		h.eng.On("RunScript", mock.Anything, "app.risor", []string(nil)).
			Run(func(mock.Arguments) { order = append(order, "script") }).
			Return(nil).Once()

		err := h.runner.Run(t.Context(), []string{"-e", "1+1", "app.risor"})
		require.NoError(t, err)
		assert.Equal(t, []string{"expr", "script"}, order)
		assert.False(t, h.shell.ran)
		h.eng.AssertExpectations(t)
	})

	t.Run("expression alone suppresses the shell", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.eng.On("EvaluateExpression", mock.Anything, "1+1").Return(int64(2), nil).Once()

		err := h.runner.Run(t.Context(), []string{"-e", "1+1"})
		require.NoError(t, err)
		assert.Equal(t, "1+1", h.runner.Config().Expr)
		assert.Empty(t, h.runner.Config().ScriptName)
		assert.False(t, h.shell.ran)
	})

	t.Run("empty expression still suppresses the shell", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.eng.On("EvaluateExpression", mock.Anything, "").Return(nil, nil).Once()

		err := h.runner.Run(t.Context(), []string{"-e", ""})
		require.NoError(t, err)
		assert.True(t, h.runner.Config().ExprSet)
		assert.False(t, h.shell.ran)
		h.eng.AssertExpectations(t)
	})

	t.Run("no script and no expression launches the shell", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		require.NoError(t, h.runner.Run(t.Context(), nil))
		assert.True(t, h.shell.ran)
	})

	t.Run("interactive launches the shell after the script", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.eng.On("RunScript", mock.Anything, "app.risor", []string(nil)).Return(nil).Once()

		err := h.runner.Run(t.Context(), []string{"-i", "app.risor"})
		require.NoError(t, err)
		assert.True(t, h.shell.ran)
	})

	t.Run("script failure surfaces", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		scriptErr := &engine.ScriptError{Message: "type error"}
		h.eng.On("RunScript", mock.Anything, "app.risor", []string(nil)).Return(scriptErr).Once()

		err := h.runner.Run(t.Context(), []string{"app.risor"})
		require.Error(t, err)
		var se *engine.ScriptError
		assert.ErrorAs(t, err, &se)
		assert.False(t, h.shell.ran)
	})
}

func TestRunner_DaemonLifecycle(t *testing.T) {
	t.Parallel()

	initArgs := []string{"app.risor", "x", "y"}
	mod := engine.NewMockModule("app.risor")

	t.Run("init loads the module and invokes the hook with args", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.eng.On("LoadModule", mock.Anything, "app.risor").Return(mod, nil).Once()
		h.eng.On("Invoke", mock.Anything, mod, "init", []string{"x", "y"}).Return(nil).Once()

		require.NoError(t, h.runner.Init(t.Context(), initArgs))
		assert.Equal(t, finitestate.StateRunning, h.runner.GetState())
		h.eng.AssertExpectations(t)
	})

	t.Run("init without a script argument is a fatal configuration error", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		err := h.runner.Init(t.Context(), []string{"-i"})
		assert.ErrorIs(t, err, ErrDaemonScriptRequired)
	})

	t.Run("missing hooks are silently tolerated", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.eng.On("LoadModule", mock.Anything, "app.risor").Return(mod, nil).Once()
		h.eng.On("Invoke", mock.Anything, mod, "init", []string{"x", "y"}).
			Return(engine.ErrNoSuchHook).Once()
		h.eng.On("Invoke", mock.Anything, mod, "start", []string(nil)).
			Return(engine.ErrNoSuchHook).Once()

		require.NoError(t, h.runner.Init(t.Context(), initArgs))
		require.NoError(t, h.runner.Start(t.Context()))
		assert.Equal(t, finitestate.StateRunning, h.runner.GetState())
	})

	t.Run("start may be invoked repeatedly without state change", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.eng.On("LoadModule", mock.Anything, "app.risor").Return(mod, nil).Once()
		h.eng.On("Invoke", mock.Anything, mod, "init", []string{"x", "y"}).Return(nil).Once()
		h.eng.On("Invoke", mock.Anything, mod, "start", []string(nil)).Return(nil).Times(3)

		require.NoError(t, h.runner.Init(t.Context(), initArgs))
		for range 3 {
			require.NoError(t, h.runner.Start(t.Context()))
			assert.Equal(t, finitestate.StateRunning, h.runner.GetState())
		}
		h.eng.AssertExpectations(t)
	})

	t.Run("hooks are no-ops without a loaded module", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		require.NoError(t, h.runner.Start(t.Context()))
		require.NoError(t, h.runner.Stop(t.Context()))
		require.NoError(t, h.runner.Destroy(t.Context()))
		h.eng.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("full lifecycle reaches destroyed", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.eng.On("LoadModule", mock.Anything, "app.risor").Return(mod, nil).Once()
		h.eng.On("Invoke", mock.Anything, mod, "init", []string{"x", "y"}).Return(nil).Once()
		h.eng.On("Invoke", mock.Anything, mod, "start", []string(nil)).Return(nil).Once()
		h.eng.On("Invoke", mock.Anything, mod, "stop", []string(nil)).Return(nil).Once()
		h.eng.On("Invoke", mock.Anything, mod, "destroy", []string(nil)).Return(nil).Once()
		h.eng.On("Close").Return(nil).Once()

		ctx := t.Context()
		require.NoError(t, h.runner.Init(ctx, initArgs))
		require.NoError(t, h.runner.Start(ctx))
		require.NoError(t, h.runner.Stop(ctx))
		require.NoError(t, h.runner.Destroy(ctx))
		assert.Equal(t, finitestate.StateDestroyed, h.runner.GetState())

		// the handle is invalidated: further hooks are no-ops
		require.NoError(t, h.runner.Start(ctx))
		h.eng.AssertExpectations(t)
	})

	t.Run("hook failure surfaces after report", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		scriptErr := &engine.ScriptError{Message: "boom in init"}
		h.eng.On("LoadModule", mock.Anything, "app.risor").Return(mod, nil).Once()
		h.eng.On("Invoke", mock.Anything, mod, "init", []string{"x", "y"}).Return(scriptErr).Once()

		err := h.runner.Init(t.Context(), initArgs)
		require.Error(t, err)
		var se *engine.ScriptError
		assert.ErrorAs(t, err, &se)
	})
}

func TestRunner_Verbose(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	assert.False(t, h.runner.Verbose())
	require.NoError(t, h.runner.ParseArgs(t.Context(), []string{"-V"}))
	assert.True(t, h.runner.Verbose())
}
