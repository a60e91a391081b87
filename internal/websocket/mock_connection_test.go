package websocket

import (
	"errors"
	"sync"
	"time"
)

// mockConnection is an in-memory Connection. ReadMessage blocks until Close.
type mockConnection struct {
	mu      sync.Mutex
	written [][]byte
	closed  chan struct{}
	once    sync.Once
}

func newMockConnection() *mockConnection {
	return &mockConnection{closed: make(chan struct{})}
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.closed:
		return errors.New("connection closed")
	default:
	}
	m.written = append(m.written, append([]byte(nil), data...))
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	<-m.closed
	return 0, nil, errors.New("connection closed")
}

func (m *mockConnection) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *mockConnection) SetReadDeadline(time.Time) error   { return nil }
func (m *mockConnection) SetWriteDeadline(time.Time) error  { return nil }
func (m *mockConnection) SetReadLimit(int64)                {}
func (m *mockConnection) SetPongHandler(func(string) error) {}
func (m *mockConnection) RemoteAddr() string                { return "127.0.0.1:9999" }
