package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/tunegate/pkg/eventstream"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ValidationEvent
	closed bool

	// Err is returned from Publish when set.
	Err error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *eventstream.ValidationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Events returns a copy of the recorded events.
func (m *MockPublisher) Events() []*eventstream.ValidationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*eventstream.ValidationEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ eventstream.Publisher = (*MockPublisher)(nil)
