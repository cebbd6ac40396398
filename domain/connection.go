package domain

import (
	"time"
)

// Connection is one live transport session from a single client.
// The identity is set at registration time and never changes for
// the life of the connection. Room is empty until a join succeeds.
type Connection struct {
	ID          string
	Identity    string
	Room        string
	ConnectedAt time.Time
}

// InRoom reports whether the connection currently occupies a room.
func (c Connection) InRoom() bool {
	return c.Room != ""
}
