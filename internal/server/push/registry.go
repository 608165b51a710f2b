// Package push tracks live notification connections, one per user, and
// delivers reminder payloads to them on a best-effort basis.
package push

import (
	"context"
	"sync"

	"assistant-service/internal/logging"
)

// Conn is the minimal surface the registry needs from a connection.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Registry maps user ids to their single live connection. A reconnect
// displaces the previous handle: last connect wins, and the displaced
// connection is closed so its reader unblocks.
type Registry struct {
	mu     sync.Mutex
	conns  map[int64]Conn
	logger logging.Logger
}

func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{
		conns:  make(map[int64]Conn),
		logger: logger.With("component", "push"),
	}
}

// Connect registers conn as the user's connection, closing any previous one.
func (r *Registry) Connect(userID int64, conn Conn) {
	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			r.logger.Warn(context.Background(), "error closing displaced connection", "user_id", userID, "error", err)
		}
	}
}

// Disconnect removes the user's connection, but only if the registered
// handle is still conn. A stale disconnect arriving after a reconnect
// leaves the fresh connection alone.
func (r *Registry) Disconnect(userID int64, conn Conn) {
	r.mu.Lock()
	if r.conns[userID] == conn {
		delete(r.conns, userID)
	}
	r.mu.Unlock()
}

// Send writes the payload to the user's connection if one is registered.
// An absent connection is not an error; a write failure is returned so the
// caller can log it, but the connection stays registered until its read
// loop notices the failure and disconnects.
func (r *Registry) Send(userID int64, payload any) error {
	r.mu.Lock()
	conn := r.conns[userID]
	r.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.WriteJSON(payload)
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
