package engine

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Verify that MockEngine implements the Engine interface
var _ Engine = (*MockEngine)(nil)

// MockEngine is a mock implementation of the Engine interface for testing.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) EvaluateExpression(ctx context.Context, expr string) (any, error) {
	args := m.Called(ctx, expr)
	return args.Get(0), args.Error(1)
}

func (m *MockEngine) RunScript(ctx context.Context, name string, scriptArgs []string) error {
	args := m.Called(ctx, name, scriptArgs)
	return args.Error(0)
}

func (m *MockEngine) LoadModule(ctx context.Context, name string) (*Module, error) {
	args := m.Called(ctx, name)
	mod, _ := args.Get(0).(*Module)
	return mod, args.Error(1)
}

func (m *MockEngine) Invoke(ctx context.Context, mod *Module, fn string, fnArgs []string) error {
	args := m.Called(ctx, mod, fn, fnArgs)
	return args.Error(0)
}

func (m *MockEngine) Close() error {
	args := m.Called()
	return args.Error(0)
}

// NewMockModule builds a module handle for tests.
func NewMockModule(name string) *Module {
	return &Module{Name: name, Path: name}
}
