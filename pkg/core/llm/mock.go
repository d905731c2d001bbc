package llm

import (
	"context"
	"sync"
)

// DemoResponse is what an unconfigured MockProvider answers with, so the
// service can be exercised end to end without an API key.
const DemoResponse = `{"summary":"Offline demo report; no model was called.","creatorDNA":{"title":"Demo Creator","tags":["demo"],"description":"Placeholder positioning."},"strategicVerdict":"Connect a real provider for an actual audit."}`

// MockProvider returns a canned response. Used offline and in tests.
type MockProvider struct {
	Response string
	Err      error

	mu       sync.Mutex
	requests []Request
}

var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) GenerateResponse(ctx context.Context, req *Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, *req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response == "" {
		return DemoResponse, nil
	}
	return m.Response, nil
}

// Requests returns a copy of every request received so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
