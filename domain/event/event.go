// Package event defines the outbound events the engine can instruct
// the transport to deliver. Payloads carry their wire shape directly:
// the websocket adapter wraps them in an envelope without reshaping.
package event

import (
	"time"

	"chat-engine/domain"
)

// Outbound is implemented by every event the router emits.
// Name is the envelope event name on the wire.
type Outbound interface {
	Name() string
}

// ActiveUsers is the presence roster, broadcast to every connection
// after each connect and disconnect.
type ActiveUsers struct {
	Users []string `json:"users"`
}

func (ActiveUsers) Name() string { return "active_users" }

const (
	StatusJoin   = "join"
	StatusLeave  = "leave"
	StatusTyping = "typing"
)

// Status announces joins, leaves, and typing-indicator changes.
// Join and leave carry a timestamp; typing carries the room instead.
type Status struct {
	Msg       string `json:"msg"`
	Type      string `json:"type"`
	Room      string `json:"room,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func (Status) Name() string { return "status" }

// WireMessage is the transport shape of a stored room message.
type WireMessage struct {
	Msg       string           `json:"msg"`
	Username  string           `json:"username"`
	Timestamp string           `json:"timestamp"`
	Reactions domain.Reactions `json:"reactions"`
}

// ChatHistory replays a room's backlog to the joining connection only.
type ChatHistory struct {
	Room     string        `json:"room"`
	Messages []WireMessage `json:"messages"`
}

func (ChatHistory) Name() string { return "chat_history" }

// MessagePosted is a room message fan-out. Reactions is always the
// empty mapping at post time.
type MessagePosted struct {
	Msg       string           `json:"msg"`
	Username  string           `json:"username"`
	Room      string           `json:"room"`
	Timestamp string           `json:"timestamp"`
	Reactions domain.Reactions `json:"reactions"`
}

func (MessagePosted) Name() string { return "message" }

// PrivateMessage goes to exactly one connection and is never stored.
type PrivateMessage struct {
	Msg       string `json:"msg"`
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp string `json:"timestamp"`
}

func (PrivateMessage) Name() string { return "private_message" }

// ReactionUpdate carries the full reaction state of one message, not a
// delta, so clients cannot drift.
type ReactionUpdate struct {
	Index     int              `json:"index"`
	Reactions domain.Reactions `json:"reactions"`
}

func (ReactionUpdate) Name() string { return "reaction_update" }

// SearchHit is one scored match from the message index.
type SearchHit struct {
	Room      string `json:"room"`
	Index     int    `json:"index"`
	Username  string `json:"username"`
	Msg       string `json:"msg"`
	Timestamp string `json:"timestamp"`
}

// SearchResults answers a search command, to the requester only.
type SearchResults struct {
	Room    string      `json:"room"`
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

func (SearchResults) Name() string { return "search_results" }

// Stamp renders timestamps the way the wire expects them.
func Stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ToWireMessage converts a stored message for history replay.
func ToWireMessage(m domain.Message) WireMessage {
	return WireMessage{
		Msg:       m.Body,
		Username:  m.Author,
		Timestamp: Stamp(m.SentAt),
		Reactions: m.Reactions,
	}
}
