package handlers

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ReZorDos/TerraWar-sub000/logging"
)

// ClientManager tracks every open client connection
type ClientManager struct {
	clients map[string]*ClientHandler // keyed by session id
	mutex   sync.RWMutex
	log     *zap.Logger
}

// NewClientManager creates a new client manager
func NewClientManager(log *zap.Logger) *ClientManager {
	log = logging.OrNop(log)
	return &ClientManager{
		clients: make(map[string]*ClientHandler),
		log:     log,
	}
}

// Add registers a client
func (cm *ClientManager) Add(handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[handler.conn.ID] = handler
}

// Remove forgets a client
func (cm *ClientManager) Remove(handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, handler.conn.ID)
}

// Count returns the number of open connections
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// snapshot copies the client list so callers can iterate without holding the lock
func (cm *ClientManager) snapshot() []*ClientHandler {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	out := make([]*ClientHandler, 0, len(cm.clients))
	for _, client := range cm.clients {
		out = append(out, client)
	}
	return out
}

// Broadcast sends a message to all connected clients
func (cm *ClientManager) Broadcast(msg interface{}) {
	for _, client := range cm.snapshot() {
		if err := client.conn.SendMessage(msg); err != nil {
			cm.log.Debug("broadcast skipped client", zap.String("session", client.conn.ID), zap.Error(err))
		}
	}
}

// CloseAll closes every open connection
func (cm *ClientManager) CloseAll() {
	for _, client := range cm.snapshot() {
		client.conn.Close()
	}
}
