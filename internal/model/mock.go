package model

import (
	"context"
	"sync"
)

// MockAdapter produces canned completions for dev and tests.
type MockAdapter struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    [][]Message
	lastOpts Options
}

func NewMockAdapter() *MockAdapter {
	return &MockAdapter{reply: "I'm here with you. Tell me more."}
}

func (a *MockAdapter) SetReply(reply string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reply = reply
	a.err = nil
}

func (a *MockAdapter) SetError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

// Calls returns the message lists passed to Complete, oldest first.
func (a *MockAdapter) Calls() [][]Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]Message, len(a.calls))
	copy(out, a.calls)
	return out
}

// LastOptions returns the sampling options from the most recent Complete call.
func (a *MockAdapter) LastOptions() Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastOpts
}

func (a *MockAdapter) Complete(_ context.Context, messages []Message, opts Options) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, append([]Message(nil), messages...))
	a.lastOpts = opts
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}
