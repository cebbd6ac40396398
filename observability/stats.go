// Package observability aggregates the engine's runtime counters.
package observability

import (
	"sync/atomic"
)

// Stats holds the engine counters. All increments are atomic so the
// router can bump them from any connection's read goroutine without
// extra locking.
type Stats struct {
	dispatched  uint64
	dropped     uint64
	messages    uint64
	privates    uint64
	reactions   uint64
	connects    uint64
	disconnects uint64
}

// Snapshot is a point-in-time copy of the counters, used by the
// heartbeat worker and the health endpoint.
type Snapshot struct {
	Dispatched        uint64 `json:"dispatched"`
	Dropped           uint64 `json:"dropped"`
	MessagesPosted    uint64 `json:"messages_posted"`
	PrivatesDelivered uint64 `json:"privates_delivered"`
	ReactionsToggled  uint64 `json:"reactions_toggled"`
	Connects          uint64 `json:"connects"`
	Disconnects       uint64 `json:"disconnects"`
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) IncrDispatched() { atomic.AddUint64(&s.dispatched, 1) }

func (s *Stats) IncrDropped() { atomic.AddUint64(&s.dropped, 1) }

func (s *Stats) IncrMessagesPosted() { atomic.AddUint64(&s.messages, 1) }

func (s *Stats) IncrPrivatesDelivered() { atomic.AddUint64(&s.privates, 1) }

func (s *Stats) IncrReactionsToggled() { atomic.AddUint64(&s.reactions, 1) }

func (s *Stats) IncrConnects() { atomic.AddUint64(&s.connects, 1) }

func (s *Stats) IncrDisconnects() { atomic.AddUint64(&s.disconnects, 1) }

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Dispatched:        atomic.LoadUint64(&s.dispatched),
		Dropped:           atomic.LoadUint64(&s.dropped),
		MessagesPosted:    atomic.LoadUint64(&s.messages),
		PrivatesDelivered: atomic.LoadUint64(&s.privates),
		ReactionsToggled:  atomic.LoadUint64(&s.reactions),
		Connects:          atomic.LoadUint64(&s.connects),
		Disconnects:       atomic.LoadUint64(&s.disconnects),
	}
}
