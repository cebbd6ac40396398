package domain

// DefaultRooms is the catalog of the reference deployment.
// It can be overridden through configuration, never at runtime.
var DefaultRooms = []string{
	"Open Mic",
	"Code & Coffee",
	"XP Zone",
	"Study Squad",
	"Lo-Fi Corner",
	"Meme Stream",
	"Wellness Wave",
}

// Catalog is the fixed set of room names known to the engine.
// Rooms are not created or destroyed while the process runs.
type Catalog struct {
	names map[string]struct{}
	order []string
}

func NewCatalog(rooms []string) Catalog {
	names := make(map[string]struct{}, len(rooms))
	order := make([]string, 0, len(rooms))
	for _, room := range rooms {
		if _, ok := names[room]; ok {
			continue
		}
		names[room] = struct{}{}
		order = append(order, room)
	}
	return Catalog{names: names, order: order}
}

// Contains reports whether the room is part of the catalog.
func (c Catalog) Contains(room string) bool {
	_, ok := c.names[room]
	return ok
}

// Rooms returns the catalog in declaration order.
func (c Catalog) Rooms() []string {
	return append([]string(nil), c.order...)
}
