// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Engine() config.EngineConfig {
	args := m.Called()
	return args.Get(0).(config.EngineConfig)
}

func (m *MockConfig) Dispatcher() config.DispatcherConfig {
	args := m.Called()
	return args.Get(0).(config.DispatcherConfig)
}

func (m *MockConfig) Backend() config.BackendConfig {
	args := m.Called()
	return args.Get(0).(config.BackendConfig)
}

func (m *MockConfig) Vocabulary() config.VocabularyConfig {
	args := m.Called()
	return args.Get(0).(config.VocabularyConfig)
}

func (m *MockConfig) MCP() config.MCPConfig {
	args := m.Called()
	return args.Get(0).(config.MCPConfig)
}

// --- Setters ---

func (m *MockConfig) SetEngineMarginPx(px int)       { m.Called(px) }
func (m *MockConfig) SetEngineMoveDurationMs(ms int) { m.Called(ms) }
func (m *MockConfig) SetEngineTypeIntervalMs(ms int) { m.Called(ms) }
func (m *MockConfig) SetBackendKind(kind string)     { m.Called(kind) }
func (m *MockConfig) SetBackendScreenSize(w, h int)  { m.Called(w, h) }

// -- Backend Mock --

// MockBackend mocks backend.Backend. It does not implement backend.CharTyper, so every rune
// goes through the key path.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ScreenSize(ctx context.Context) (schemas.ScreenGeometry, error) {
	args := m.Called(ctx)
	return args.Get(0).(schemas.ScreenGeometry), args.Error(1)
}

func (m *MockBackend) PointerPosition(ctx context.Context) (schemas.Point, error) {
	args := m.Called(ctx)
	return args.Get(0).(schemas.Point), args.Error(1)
}

func (m *MockBackend) SetPointerPosition(ctx context.Context, p schemas.Point) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockBackend) PressButton(ctx context.Context, button schemas.MouseButton) error {
	return m.Called(ctx, button).Error(0)
}

func (m *MockBackend) ReleaseButton(ctx context.Context, button schemas.MouseButton) error {
	return m.Called(ctx, button).Error(0)
}

func (m *MockBackend) PressKey(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockBackend) ReleaseKey(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockBackend) Scroll(ctx context.Context, dx, dy int) error {
	return m.Called(ctx, dx, dy).Error(0)
}

// -- Executor Mock --

// MockExecutor mocks agent.Executor.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Do(ctx context.Context, actions []schemas.Action) (schemas.ExecutionResult, error) {
	args := m.Called(ctx, actions)
	return args.Get(0).(schemas.ExecutionResult), args.Error(1)
}
