package ws

import (
	"sync"

	"github.com/rs/zerolog"
)

// Sender is a connection endpoint the hub can deliver to.
type Sender interface {
	Send(msg Message) error
	Close()
}

// Hub tracks live connections and the groups they belong to. Groups are
// used for match-wide broadcasts.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]Sender              // conn_id -> connection
	groups      map[string]map[string]struct{} // group -> conn_ids
	logger      zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]Sender),
		groups:      make(map[string]map[string]struct{}),
		logger:      logger.With().Str("component", "ws_hub").Logger(),
	}
}

// RegisterConnection adds a connection, replacing any previous one with
// the same id.
func (h *Hub) RegisterConnection(connID string, conn Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.connections[connID]; exists {
		old.Close()
	}
	h.connections[connID] = conn
	h.logger.Debug().Str("conn_id", connID).Msg("connection registered")
}

// UnregisterConnection closes and forgets the connection and removes it
// from every group.
func (h *Hub) UnregisterConnection(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[connID]; exists {
		conn.Close()
		delete(h.connections, connID)
		h.logger.Debug().Str("conn_id", connID).Msg("connection unregistered")
	}
	for group, members := range h.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// Connected reports whether the connection is registered.
func (h *Hub) Connected(connID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[connID]
	return ok
}

// JoinGroup adds a connection to a broadcast group.
func (h *Hub) JoinGroup(group, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]struct{}, 2)
		h.groups[group] = members
	}
	members[connID] = struct{}{}
}

// DropGroup forgets a group. Connections stay registered.
func (h *Hub) DropGroup(group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, group)
}

// Members returns the connection ids in a group.
func (h *Hub) Members(group string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.groups[group]))
	for id := range h.groups[group] {
		out = append(out, id)
	}
	return out
}

// Broadcast sends a message to every connection in a group. The first
// delivery error is returned after all members were attempted.
func (h *Hub) Broadcast(group string, msg Message) error {
	var firstErr error
	for _, connID := range h.Members(group) {
		if err := h.SendTo(connID, msg); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			h.logger.Warn().Err(err).Str("conn_id", connID).Str("group", group).Str("type", msg.Type).Msg("broadcast send failed")
		}
	}
	return firstErr
}

// SendTo delivers a message to a specific connection.
func (h *Hub) SendTo(connID string, msg Message) error {
	h.mu.RLock()
	conn, exists := h.connections[connID]
	h.mu.RUnlock()

	if !exists {
		return ErrConnectionNotFound
	}
	return conn.Send(msg)
}

// Len reports the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

var (
	ErrConnectionNotFound = &Error{Code: "connection_not_found", Message: "Connection not found"}
	ErrConnectionClosed   = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull      = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
