package mock

import (
	"context"
	"sync"

	"github.com/podgraph/podgraph/ai"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields and records every
// request for assertions.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns "OK".
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (string, error)

	mu       sync.Mutex
	requests []ai.CompletionRequest
}

// NewMockCompleter creates a mock completer.
// Note: Returns concrete type to allow test assertions via GetMockCompleter().
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records the request and delegates to CompleteFunc.
func (m *MockCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "OK", nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of all recorded requests.
func (m *MockCompleter) Requests() []ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears recorded requests and the custom function.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.CompleteFunc = nil
}
