package mock

import (
	"context"
	"strings"
	"sync"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
// Safe for concurrent use; the comparer calls Complete from pool workers.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default canned behavior.
	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	mu        sync.Mutex
	callCount int
	lastUser  string
}

// NewMockCompleter creates a mock completer with default canned behavior.
// Note: Returns concrete type to allow test assertions via GetMockCompleter().
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete returns a deterministic canned reply.
// Default behavior: echoes the first line of the user prompt.
func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastUser = user
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, system, user)
	}

	line := user
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line), nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastUserPrompt returns the user prompt from the most recent Complete call.
func (m *MockCompleter) LastUserPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUser
}

// Reset clears the call count and custom functions.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastUser = ""
	m.CompleteFunc = nil
}
