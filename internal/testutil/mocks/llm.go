package mocks

import (
	"context"
	"errors"
	"sync"

	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/domain/entity"
)

var _ output.LLMPort = (*MockLLM)(nil)

var ErrScriptExhausted = errors.New("mock llm: no scripted response left")

type scripted struct {
	content string
	err     error
}

// MockLLM replays scripted replies in order and keeps every request it saw.
type MockLLM struct {
	mu       sync.Mutex
	replies  []scripted
	Requests []output.ChatRequest
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) WithReply(content string) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, scripted{content: content})
	return m
}

func (m *MockLLM) WithError(err error) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, scripted{err: err})
	return m
}

func (m *MockLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)

	if len(m.replies) == 0 {
		return nil, ErrScriptExhausted
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &output.ChatResponse{
		Message: entity.Message{Role: entity.RoleAssistant, Content: next.content},
	}, nil
}

func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
