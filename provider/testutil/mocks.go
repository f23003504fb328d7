package testutil

import (
	"context"
	"errors"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"pairpilot/model"
	"pairpilot/ollama"
)

// ErrScriptExhausted is returned when a MockProvider runs out of replies.
var ErrScriptExhausted = errors.New("mock provider: no scripted reply left")

// Call records one Complete invocation.
type Call struct {
	Messages []model.Message
	Tools    []mcptypes.Tool
	Choice   model.ToolChoice
}

// Reply is one scripted Complete outcome.
type Reply struct {
	Message model.Message
	Err     error
}

// MockProvider implements model.Provider for testing. Complete returns the
// scripted replies in order and records every call.
type MockProvider struct {
	// CompleteFunc overrides the script when set.
	CompleteFunc   func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, choice model.ToolChoice) (model.Message, error)
	ListModelsFunc func(ctx context.Context) ([]ollama.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	mu           sync.Mutex
	script       []Reply
	calls        []Call
	currentModel string
}

// NewMockProvider creates a mock provider answering with replies in order.
func NewMockProvider(modelName string, replies ...Reply) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
		script:       replies,
	}
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

// Text is a scripted final answer.
func Text(content string) Reply {
	return Reply{Message: model.Message{Role: model.RoleAssistant, Content: content}}
}

// ToolCalls is a scripted tool-call response without content.
func ToolCalls(calls ...model.ToolCall) Reply {
	return Reply{Message: model.Message{Role: model.RoleAssistant, ToolCalls: calls}}
}

// Failure is a scripted transport error.
func Failure(err error) Reply {
	return Reply{Err: err}
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return []ollama.ModelInfo{
		{Name: "mock-model-1", Size: 1000},
		{Name: "mock-model-2", Size: 2000},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Complete(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, choice model.ToolChoice) (model.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{
		Messages: model.CloneMessages(messages),
		Tools:    tools,
		Choice:   choice,
	})
	if m.CompleteFunc != nil {
		m.mu.Unlock()
		return m.CompleteFunc(ctx, messages, tools, choice)
	}
	if len(m.script) == 0 {
		m.mu.Unlock()
		return model.Message{}, ErrScriptExhausted
	}
	next := m.script[0]
	m.script = m.script[1:]
	m.mu.Unlock()

	return next.Message, next.Err
}

// Calls returns the recorded Complete calls.
func (m *MockProvider) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
