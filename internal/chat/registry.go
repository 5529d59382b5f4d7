package chat

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// member is the slice of Conn the registry needs; kept narrow so tests can
// stand in lightweight fakes.
type member interface {
	ID() string
	WriteEvent(event string, data any) error
}

// Registry is the in-process room membership map: roomID to the set of live
// connections subscribed to that room's events. It is process-local state,
// rebuilt from scratch on restart; durable session state lives in the timer
// and transcript stores.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]member
}

// NewRegistry creates an empty room registry
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]member)}
}

// Add puts a connection into a room, creating the room on first join
func (r *Registry) Add(roomID string, m member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]member)
	}
	r.rooms[roomID][m.ID()] = m
}

// Remove drops a connection from a room, deleting the room once empty.
// Idempotent: removing an unknown connection is a no-op.
func (r *Registry) Remove(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.rooms, roomID)
	}
}

// Count returns the number of live connections in a room
func (r *Registry) Count(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// Broadcast delivers an event to every connection in a room. Individual
// write failures are logged and skipped; one slow peer must not stall the
// rest of the room.
func (r *Registry) Broadcast(roomID, event string, data any) {
	r.broadcast(roomID, "", event, data)
}

// BroadcastExcept delivers an event to every room member except one
// connection, used for signaling relay and typing indicators.
func (r *Registry) BroadcastExcept(roomID, exceptConnID, event string, data any) {
	r.broadcast(roomID, exceptConnID, event, data)
}

func (r *Registry) broadcast(roomID, exceptConnID, event string, data any) {
	r.mu.RLock()
	conns := make([]member, 0, len(r.rooms[roomID]))
	for id, m := range r.rooms[roomID] {
		if id == exceptConnID {
			continue
		}
		conns = append(conns, m)
	}
	r.mu.RUnlock()

	for _, m := range conns {
		if err := m.WriteEvent(event, data); err != nil {
			log.Warn().
				Err(err).
				Str("room_id", roomID).
				Str("conn_id", m.ID()).
				Str("event", event).
				Msg("Failed to deliver event")
		}
	}
}
