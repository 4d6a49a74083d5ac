package agent

import (
	"context"
	"sync"

	"interviewsim/pkg/agent/llmerrors"
)

// MockLLMClient returns canned responses in order. Used by unit tests to
// exercise drivers and step functions without a live provider.
type MockLLMClient struct {
	mu        sync.Mutex
	responses []CompletionResponse
	err       error
	index     int

	// Calls records every request for assertion by tests.
	Calls []CompletionRequest
}

// NewMockLLMClient creates a mock client that cycles through responses.
// If err is non-nil, every call returns it instead.
func NewMockLLMClient(responses []CompletionResponse, err error) *MockLLMClient {
	return &MockLLMClient{responses: responses, err: err}
}

// Complete implements LLMClient.
func (m *MockLLMClient) Complete(_ context.Context, in CompletionRequest) (CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, in)

	if m.err != nil {
		return CompletionResponse{}, m.err
	}
	if len(m.responses) == 0 {
		return CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "mock has no responses configured")
	}

	resp := m.responses[m.index%len(m.responses)]
	m.index++
	return resp, nil
}

// GetModelName implements LLMClient.
func (m *MockLLMClient) GetModelName() string {
	return "mock-model"
}

// CallCount returns how many completions have been requested.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
