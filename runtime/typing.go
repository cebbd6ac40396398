package runtime

import (
	"fmt"
	"sync"
)

// TypingSet tracks which identities are currently typing in each room.
//
// Entries are only ever mutated by explicit typing events: sending a
// message or leaving a room does not clear them. A participant who
// navigates away mid-keystroke stays "typing" until their client sends
// typing:false, which mirrors how the indicator has always behaved.
type TypingSet struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{}
}

func NewTypingSet() *TypingSet {
	return &TypingSet{
		rooms: make(map[string]map[string]struct{}),
	}
}

// Set adds or removes the identity from the room's typing set.
func (t *TypingSet) Set(room, identity string, typing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.rooms[room]
	if !ok {
		if !typing {
			return
		}
		members = make(map[string]struct{})
		t.rooms[room] = members
	}

	if typing {
		members[identity] = struct{}{}
		return
	}
	delete(members, identity)
	if len(members) == 0 {
		delete(t.rooms, room)
	}
}

// StatusFor renders the indicator line for a room, leaving out the
// identity that just triggered the event so a typer never sees
// themselves. The empty string means "clear the indicator".
//
//	0 others  -> ""
//	1 other   -> "<name> is typing..."
//	2 others  -> "<a> and <b> are typing..." (pair order unspecified)
//	3 or more -> "Several people are typing..."
func (t *TypingSet) StatusFor(room, excluding string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var others []string
	for identity := range t.rooms[room] {
		if identity != excluding {
			others = append(others, identity)
		}
	}

	switch len(others) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s is typing...", others[0])
	case 2:
		return fmt.Sprintf("%s and %s are typing...", others[0], others[1])
	default:
		return "Several people are typing..."
	}
}
