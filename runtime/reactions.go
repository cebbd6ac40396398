package runtime

import (
	"github.com/samber/lo"

	"chat-engine/domain"
)

// ToggleReaction flips one identity's reaction on a message, addressed
// by room and stable index. An unknown room or out-of-range index
// reports ok=false and the caller suppresses any outbound event.
//
// Toggle semantics per (message, emoji, identity): absent adds, present
// removes. An emoji whose reactor list just emptied is deleted outright,
// so the mapping never holds a present-but-empty entry. The returned
// mapping is a deep copy of the full updated state.
func (d *Directory) ToggleReaction(room string, index int, emoji, identity string) (domain.Reactions, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored, ok := d.history[room]
	if !ok || index < 0 || index >= len(stored) {
		return nil, false
	}

	msg := &stored[index]
	reactors := msg.Reactions[emoji]

	if at := lo.IndexOf(reactors, identity); at >= 0 {
		reactors = append(reactors[:at], reactors[at+1:]...)
		if len(reactors) == 0 {
			delete(msg.Reactions, emoji)
		} else {
			msg.Reactions[emoji] = reactors
		}
	} else {
		msg.Reactions[emoji] = append(reactors, identity)
	}

	return msg.Reactions.Clone(), true
}
