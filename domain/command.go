package domain

// Command is an inbound engine event, decoded and validated at the
// transport boundary before the router ever sees it. One variant per
// wire event; the connection id and identity ride alongside in the
// router call, not in the command itself.
type Command interface {
	EventName() string
}

type JoinCommand struct {
	Room string
}

func (JoinCommand) EventName() string { return "join" }

type LeaveCommand struct {
	Room string
}

func (LeaveCommand) EventName() string { return "leave" }

// PostMessageCommand is a room-scoped message. Room defaults to
// "General" on the wire when absent, which the reference catalog does
// not contain: such messages are dropped like any invalid-room message.
type PostMessageCommand struct {
	Room string
	Body string
}

func (PostMessageCommand) EventName() string { return "message" }

// PrivateMessageCommand targets a single connected identity.
// Nothing is persisted and the sender receives no copy.
type PrivateMessageCommand struct {
	Target string
	Body   string
}

func (PrivateMessageCommand) EventName() string { return "message" }

type ReactCommand struct {
	Room  string
	Index int
	Emoji string
}

func (ReactCommand) EventName() string { return "react_to_message" }

type TypingCommand struct {
	Room   string
	Typing bool
}

func (TypingCommand) EventName() string { return "typing" }

type SearchCommand struct {
	Room  string
	Query string
	Limit int
}

func (SearchCommand) EventName() string { return "search" }
