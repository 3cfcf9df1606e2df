package handlers

import (
	"log/slog"
	"sync"

	"mahjong-realm/messages"
)

// ClientManager maps session ids to the connection playing them
type ClientManager struct {
	clients map[string]*ClientHandler
	mutex   sync.RWMutex
	logger  *slog.Logger
}

// NewClientManager creates a new client manager
func NewClientManager(logger *slog.Logger) *ClientManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientManager{
		clients: make(map[string]*ClientHandler),
		logger:  logger,
	}
}

// AddClient binds a session to a handler
func (cm *ClientManager) AddClient(sessionID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[sessionID] = handler
}

// RemoveClient unbinds a session
func (cm *ClientManager) RemoveClient(sessionID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, sessionID)
}

// Count is the number of bound sessions
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// SendToSession delivers msgs to the client playing sessionID. It has the
// shape of services.Notifier.
func (cm *ClientManager) SendToSession(sessionID string, msgs []messages.BaseMessage) {
	cm.mutex.RLock()
	client, ok := cm.clients[sessionID]
	cm.mutex.RUnlock()
	if !ok {
		return
	}
	for _, msg := range msgs {
		if err := client.conn.SendMessage(msg); err != nil {
			cm.logger.Debug("send to session failed", "session", sessionID, "error", err)
			return
		}
	}
}

// CloseAll disconnects every bound client
func (cm *ClientManager) CloseAll() {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	for _, client := range cm.clients {
		client.conn.Close()
	}
}
