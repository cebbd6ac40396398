// Package domain contains core concepts of the chat system.
// This file defines Message records and their reaction state.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"
)

// Reactions maps an emoji to the identities that reacted with it.
// A key is never present with an empty list: the entry is removed
// the instant its last reactor is toggled off.
type Reactions map[string][]string

// Clone returns a deep copy so callers can hand the mapping to the
// transport without exposing the room's internal state.
func (r Reactions) Clone() Reactions {
	out := make(Reactions, len(r))
	for emoji, identities := range r {
		out[emoji] = append([]string(nil), identities...)
	}
	return out
}

// Message represents a chat message posted in a room.
// It is identified by its positional index in the room's history,
// which stays stable for the lifetime of the process.
type Message struct {
	Body      string
	Author    string
	SentAt    time.Time
	Reactions Reactions
}

// Clone deep-copies the message, including its reaction state.
func (m Message) Clone() Message {
	m.Reactions = m.Reactions.Clone()
	return m
}
