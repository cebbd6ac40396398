package runtime

import (
	"sync"

	"chat-engine/domain"
	"chat-engine/errors"
)

// Directory is the room component: it validates room names against the
// fixed catalog and owns each room's ordered message history. Reaction
// state lives inside the message records, so the reaction ledger (see
// reactions.go) shares this mutex.
//
// Histories only ever grow. Messages are addressed by their positional
// index, which clients hold on to for reaction toggles, so deletion or
// compaction would corrupt every handle out there.
type Directory struct {
	mu      sync.Mutex
	catalog domain.Catalog
	history map[string][]domain.Message
}

func NewDirectory(catalog domain.Catalog) *Directory {
	return &Directory{
		catalog: catalog,
		history: make(map[string][]domain.Message),
	}
}

// IsValid reports whether the room is part of the catalog.
func (d *Directory) IsValid(room string) bool {
	return d.catalog.Contains(room)
}

// Rooms returns the catalog in declaration order.
func (d *Directory) Rooms() []string {
	return d.catalog.Rooms()
}

// Append adds a message to the room's history and returns its stable
// index. The message is stored with a non-nil reaction mapping so the
// wire shape is always an object, never null.
func (d *Directory) Append(room string, msg domain.Message) (int, error) {
	if !d.catalog.Contains(room) {
		return 0, errors.ErrInvalidRoom
	}
	if msg.Reactions == nil {
		msg.Reactions = domain.Reactions{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.history[room] = append(d.history[room], msg)
	return len(d.history[room]) - 1, nil
}

// History returns a deep-copied snapshot of the room's messages.
// A valid room that never received traffic yields an empty slice.
func (d *Directory) History(room string) []domain.Message {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := d.history[room]
	messages := make([]domain.Message, len(stored))
	for i, msg := range stored {
		messages[i] = msg.Clone()
	}
	return messages
}

// MessageAt is a bounds-checked lookup by stable index. A miss is not
// an error: callers treat it as a silent no-op.
func (d *Directory) MessageAt(room string, index int) (domain.Message, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored, ok := d.history[room]
	if !ok || index < 0 || index >= len(stored) {
		return domain.Message{}, false
	}
	return stored[index].Clone(), true
}

// Len reports the current history length of the room.
func (d *Directory) Len(room string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history[room])
}
