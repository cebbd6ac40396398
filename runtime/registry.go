package runtime

import (
	"sync"
	"time"

	"chat-engine/contract"
	"chat-engine/domain"
)

type connectionEntry struct {
	identity    string
	room        string
	connectedAt time.Time
	sink        contract.EventSink
}

// Registry is the presence component: it maps each live connection to
// its identity, current room, and delivery sink. It is pure state;
// roster broadcasts are always the router's doing.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*connectionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*connectionEntry),
	}
}

// Register inserts or overwrites the connection entry with the identity
// and the current timestamp. No room is assigned yet. Registering the
// same connection id twice is harmless.
func (r *Registry) Register(connID, identity string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[connID] = &connectionEntry{
		identity:    identity,
		connectedAt: time.Now().UTC(),
		sink:        sink,
	}
}

// Unregister removes the entry and reports the identity that was
// present. A second unregister for the same id reports ok=false and
// changes nothing.
func (r *Registry) Unregister(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.connections[connID]
	if !ok {
		return "", false
	}
	delete(r.connections, connID)
	return entry.identity, true
}

// SetRoom records the room a connection occupies. Unknown connection
// ids are ignored: a disconnect may already have raced the join.
func (r *Registry) SetRoom(connID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.connections[connID]; ok {
		entry.room = room
	}
}

// ClearRoom drops the room association but keeps the connection entry.
func (r *Registry) ClearRoom(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.connections[connID]; ok {
		entry.room = ""
	}
}

// Lookup returns a snapshot of the connection state.
func (r *Registry) Lookup(connID string) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.connections[connID]
	if !ok {
		return domain.Connection{}, false
	}
	return domain.Connection{
		ID:          connID,
		Identity:    entry.identity,
		Room:        entry.room,
		ConnectedAt: entry.connectedAt,
	}, true
}

// ActiveIdentities returns the roster of every live connection.
// Order is not significant.
func (r *Registry) ActiveIdentities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identities := make([]string, 0, len(r.connections))
	for _, entry := range r.connections {
		identities = append(identities, entry.identity)
	}
	return identities
}

// AllSinks snapshots every delivery sink, for roster broadcasts.
func (r *Registry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.connections))
	for _, entry := range r.connections {
		sinks = append(sinks, entry.sink)
	}
	return sinks
}

// SinksForRoom snapshots the sinks of every connection currently in
// the room. Returns nil when the room has no occupants.
func (r *Registry) SinksForRoom(room string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, entry := range r.connections {
		if entry.room == room {
			sinks = append(sinks, entry.sink)
		}
	}
	return sinks
}

// SinkFor returns the delivery sink of one connection.
func (r *Registry) SinkFor(connID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.connections[connID]
	if !ok {
		return nil, false
	}
	return entry.sink, true
}

// SinkForIdentity resolves a display name to the sink of its first
// matching connection, for private delivery. Which connection wins is
// unspecified when the same identity is connected twice.
func (r *Registry) SinkForIdentity(identity string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.connections {
		if entry.identity == identity {
			return entry.sink, true
		}
	}
	return nil, false
}
