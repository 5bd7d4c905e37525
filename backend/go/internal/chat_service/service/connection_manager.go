package service

import (
	"sync"

	"github.com/gorilla/websocket"
)

// ConnectionManager tracks one WebSocket connection per user for server
// pushed updates. A second connection for the same user replaces the first.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewConnectionManager creates an empty manager.
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
	}
}

// Add registers a connection for a user, closing any previous one.
func (m *ConnectionManager) Add(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.connections[userID]; ok {
		old.Close()
	}
	m.connections[userID] = conn
}

// Remove closes and drops the user's connection, but only if the registered
// connection is still conn. A reader that dies because a reconnect replaced
// its connection must not tear down the replacement.
func (m *ConnectionManager) Remove(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.connections[userID]
	if !ok || current != conn {
		return
	}
	current.Close()
	delete(m.connections, userID)
}

// SendMessage writes a text message to the user's connection. Returns false
// when the user has no live connection or the write fails.
func (m *ConnectionManager) SendMessage(userID string, message []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.connections[userID]
	if !ok {
		return false
	}
	return conn.WriteMessage(websocket.TextMessage, message) == nil
}
