package notification

import (
	"context"
	"sync"
)

// MockNotifier records every message it is given. If Err is set, Send
// returns it after recording.
type MockNotifier struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (m *MockNotifier) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.Err
}

// SetErr changes the error returned by subsequent sends.
func (m *MockNotifier) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Messages returns a copy of everything sent so far.
func (m *MockNotifier) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

// Last returns the most recent message, or false if none was sent.
func (m *MockNotifier) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}
