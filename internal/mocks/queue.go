package mocks

import "sync"

// PublishedMessage is one captured Publish call.
type PublishedMessage struct {
	Subject string
	Data    []byte
}

// MockMessageQueue captures published messages and lets tests drive
// subscribed handlers directly.
type MockMessageQueue struct {
	mu        sync.Mutex
	Published []PublishedMessage
	handlers  map[string]func(data []byte) error

	PublishFunc func(subject string, data []byte) error
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{handlers: make(map[string]func(data []byte) error)}
}

func (m *MockMessageQueue) Publish(subject string, data []byte) error {
	m.mu.Lock()
	m.Published = append(m.Published, PublishedMessage{Subject: subject, Data: data})
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(subject, data)
	}
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func(data []byte) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[subject] = handler
	return nil
}

// Deliver invokes the handler registered for subject, simulating an inbound
// message.
func (m *MockMessageQueue) Deliver(subject string, data []byte) error {
	m.mu.Lock()
	handler := m.handlers[subject]
	m.mu.Unlock()
	if handler == nil {
		return nil
	}
	return handler(data)
}

func (m *MockMessageQueue) Close() error { return nil }
