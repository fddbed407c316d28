package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// Canned is a scripted mock response.
type Canned struct {
	Content json.RawMessage
	Err     error
	Delay   func(ctx context.Context) error // optional, simulates latency
}

// Mock is a deterministic Provider for tests: canned responses in FIFO
// order, every prompt recorded.
type Mock struct {
	mu      sync.Mutex
	queue   []Canned
	Prompts []Prompt
}

// NewMock creates a Mock preloaded with responses.
func NewMock(responses ...Canned) *Mock {
	return &Mock{queue: responses}
}

// Complete returns the next canned response, or ErrUnavailable when the
// queue is empty.
func (m *Mock) Complete(ctx context.Context, p Prompt) (*Result, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, p)
	var next Canned
	var empty bool
	if len(m.queue) == 0 {
		empty = true
	} else {
		next = m.queue[0]
		m.queue = m.queue[1:]
	}
	m.mu.Unlock()

	if empty {
		return nil, &ErrUnavailable{}
	}
	if next.Delay != nil {
		if err := next.Delay(ctx); err != nil {
			return nil, err
		}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Result{Content: next.Content, Model: "mock", StopReason: "end"}, nil
}

// Model returns "mock".
func (m *Mock) Model() string { return "mock" }

// Push appends a canned response.
func (m *Mock) Push(c Canned) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, c)
}
