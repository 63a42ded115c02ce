package gateway

import "sync"

// Registry maps transient connection ids to durable player ids. The mapping
// exists only while the connection is live; the Player record it points at
// outlives it, which is what makes reconnect-with-same-identity work.
type Registry struct {
	mu      sync.RWMutex
	players map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{players: make(map[string]string)}
}

// Bind associates a connection with a player identity, replacing any prior
// binding for that connection.
func (r *Registry) Bind(connID, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[connID] = playerID
}

// Resolve returns the player bound to a connection, if any.
func (r *Registry) Resolve(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	playerID, ok := r.players[connID]
	return playerID, ok
}

// Drop removes the binding for a connection and returns the player it held.
func (r *Registry) Drop(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	playerID, ok := r.players[connID]
	if ok {
		delete(r.players, connID)
	}
	return playerID, ok
}
