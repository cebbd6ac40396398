// Package runtime contains the chat engine's state components and the
// router that drives them. It decides what to send and to whom; the
// transport owns framing and delivery.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-engine/contract"
	"chat-engine/domain"
	"chat-engine/domain/event"
	"chat-engine/errors"
	"chat-engine/moderation"
	"chat-engine/observability"
	"chat-engine/search"
)

const defaultSearchLimit = 10

// Router dispatches inbound events against the presence registry, the
// room directory, the typing set, and the reaction ledger, then
// delivers the resulting outbound events through the sinks recorded in
// the registry.
//
// Every handler follows the same failure policy: internal faults are
// logged and the event is dropped. Nothing propagates back to the
// transport, so one malformed event can never take down a connection
// or affect other participants.
type Router struct {
	log       *slog.Logger
	registry  *Registry
	directory *Directory
	typing    *TypingSet
	stats     *observability.Stats

	moderator   *moderation.Moderator
	index       *search.Index
	indexQueue  chan<- search.Document
	searchLimit int
}

func NewRouter(log *slog.Logger, registry *Registry, directory *Directory,
	typing *TypingSet, stats *observability.Stats) *Router {
	return &Router{
		log:         log,
		registry:    registry,
		directory:   directory,
		typing:      typing,
		stats:       stats,
		searchLimit: defaultSearchLimit,
	}
}

// WithModeration enables the censor pass over room-message bodies.
func (r *Router) WithModeration(moderator *moderation.Moderator) *Router {
	r.moderator = moderator
	return r
}

// WithSearch wires the message index. Posted messages are queued for
// the indexer worker; search commands query the index directly.
func (r *Router) WithSearch(index *search.Index, queue chan<- search.Document, limit int) *Router {
	r.index = index
	r.indexQueue = queue
	if limit > 0 {
		r.searchLimit = limit
	}
	return r
}

// Connect registers the connection and broadcasts the refreshed roster
// to everyone. The transport only calls this with an authenticated
// identity; unauthenticated sockets are rejected before the engine is
// involved.
func (r *Router) Connect(connID, identity string, sink contract.EventSink) {
	r.registry.Register(connID, identity, sink)
	r.stats.IncrConnects()
	r.broadcastRoster()
	r.log.Info("User connected", "username", identity)
}

// Disconnect unregisters the connection and broadcasts the refreshed
// roster. A duplicate disconnect is a no-op: the roster goes out once.
// No leave status is synthesized and typing state is left alone; only
// an explicit leave or typing:false clears those.
func (r *Router) Disconnect(connID string) {
	identity, ok := r.registry.Unregister(connID)
	if !ok {
		return
	}
	r.stats.IncrDisconnects()
	r.broadcastRoster()
	r.log.Info("User disconnected", "username", identity)
}

// Dispatch routes one decoded inbound event for a connection. It never
// panics outward and never returns an error to the transport: the
// user-visible effect of a malformed event is that nothing happened.
func (r *Router) Dispatch(ctx context.Context, connID string, cmd domain.Command) {
	r.stats.IncrDispatched()

	defer func() {
		if rec := recover(); rec != nil {
			r.stats.IncrDropped()
			r.log.Error("Handler panic, event dropped", "event", cmd.EventName(), "panic", fmt.Sprintf("%v", rec))
		}
	}()

	conn, ok := r.registry.Lookup(connID)
	if !ok {
		r.drop(cmd, errors.ErrUnknownConnection)
		return
	}

	var err error
	switch c := cmd.(type) {
	case domain.JoinCommand:
		err = r.handleJoin(connID, conn.Identity, c)
	case domain.LeaveCommand:
		err = r.handleLeave(connID, conn.Identity, c)
	case domain.PostMessageCommand:
		err = r.handleMessage(conn.Identity, c)
	case domain.PrivateMessageCommand:
		err = r.handlePrivate(conn.Identity, c)
	case domain.ReactCommand:
		err = r.handleReact(conn.Identity, c)
	case domain.TypingCommand:
		err = r.handleTyping(conn.Identity, c)
	case domain.SearchCommand:
		err = r.handleSearch(ctx, connID, c)
	default:
		err = fmt.Errorf("unhandled command %T", cmd)
	}

	if err != nil {
		r.drop(cmd, err)
	}
}

// handleJoin validates the room, records it, announces the join, and
// replays history to the joiner only. Joining while already in a room
// silently switches the recorded room; no leave is synthesized for the
// old one. An invalid room leaves every component untouched.
func (r *Router) handleJoin(connID, identity string, cmd domain.JoinCommand) error {
	if !r.directory.IsValid(cmd.Room) {
		return fmt.Errorf("join %q: %w", cmd.Room, errors.ErrInvalidRoom)
	}

	r.registry.SetRoom(connID, cmd.Room)

	r.deliver(r.registry.SinksForRoom(cmd.Room), event.Status{
		Msg:       fmt.Sprintf("%s has joined the room.", identity),
		Type:      event.StatusJoin,
		Timestamp: event.Stamp(time.Now()),
	})

	// History replay goes to the joiner alone, and only when the room
	// already has traffic.
	if history := r.directory.History(cmd.Room); len(history) > 0 {
		messages := make([]event.WireMessage, len(history))
		for i, msg := range history {
			messages[i] = event.ToWireMessage(msg)
		}
		if sink, ok := r.registry.SinkFor(connID); ok {
			r.deliver([]contract.EventSink{sink}, event.ChatHistory{Room: cmd.Room, Messages: messages})
		}
	}

	r.log.Info("User joined room", "username", identity, "room", cmd.Room)
	return nil
}

// handleLeave clears the room association and announces the leave to
// the remaining occupants. The room name is not validated; leaving a
// room you never joined is harmless.
func (r *Router) handleLeave(connID, identity string, cmd domain.LeaveCommand) error {
	r.registry.ClearRoom(connID)

	r.deliver(r.registry.SinksForRoom(cmd.Room), event.Status{
		Msg:       fmt.Sprintf("%s has left the room.", identity),
		Type:      event.StatusLeave,
		Timestamp: event.Stamp(time.Now()),
	})

	r.log.Info("User left room", "username", identity, "room", cmd.Room)
	return nil
}

// handleMessage appends a room message and fans it out to the room.
func (r *Router) handleMessage(identity string, cmd domain.PostMessageCommand) error {
	body := strings.TrimSpace(cmd.Body)
	if body == "" {
		return errors.ErrEmptyMessage
	}
	if r.moderator != nil {
		censored, words := r.moderator.Censor(body)
		if len(words) > 0 {
			r.log.Warn("Message censored", "username", identity, "room", cmd.Room, "words", words)
		}
		body = censored
	}

	sentAt := time.Now().UTC()
	msg := domain.Message{Body: body, Author: identity, SentAt: sentAt}

	index, err := r.directory.Append(cmd.Room, msg)
	if err != nil {
		return fmt.Errorf("message to %q: %w", cmd.Room, err)
	}
	r.stats.IncrMessagesPosted()
	r.enqueueForIndex(search.Document{
		Room:   cmd.Room,
		Index:  index,
		Author: identity,
		Body:   body,
		SentAt: sentAt,
	})

	r.deliver(r.registry.SinksForRoom(cmd.Room), event.MessagePosted{
		Msg:       body,
		Username:  identity,
		Room:      cmd.Room,
		Timestamp: event.Stamp(sentAt),
		Reactions: domain.Reactions{},
	})

	r.log.Info("Message sent", "username", identity, "room", cmd.Room)
	return nil
}

// handlePrivate delivers a message to the first connection of the
// target identity. Nothing is stored; the sender gets no copy, no
// receipt, and no error when the target is gone.
func (r *Router) handlePrivate(identity string, cmd domain.PrivateMessageCommand) error {
	body := strings.TrimSpace(cmd.Body)
	if body == "" {
		return errors.ErrEmptyMessage
	}

	sink, ok := r.registry.SinkForIdentity(cmd.Target)
	if !ok {
		return fmt.Errorf("private to %q: %w", cmd.Target, errors.ErrMissingTarget)
	}

	r.deliver([]contract.EventSink{sink}, event.PrivateMessage{
		Msg:       body,
		From:      identity,
		To:        cmd.Target,
		Timestamp: event.Stamp(time.Now()),
	})
	r.stats.IncrPrivatesDelivered()

	r.log.Info("Private message sent", "from", identity, "to", cmd.Target)
	return nil
}

// handleReact toggles the identity's reaction and broadcasts the full
// updated mapping to the room's current occupants, reactor included
// only if they are still there.
func (r *Router) handleReact(identity string, cmd domain.ReactCommand) error {
	reactions, ok := r.directory.ToggleReaction(cmd.Room, cmd.Index, cmd.Emoji, identity)
	if !ok {
		return fmt.Errorf("react %q[%d]: %w", cmd.Room, cmd.Index, errors.ErrIndexOutOfRange)
	}
	r.stats.IncrReactionsToggled()

	r.deliver(r.registry.SinksForRoom(cmd.Room), event.ReactionUpdate{
		Index:     cmd.Index,
		Reactions: reactions,
	})
	return nil
}

// handleTyping updates the typing set and broadcasts the recomputed
// indicator to every occupant, the typer included: the empty string on
// a stop transition is what clears their indicator.
func (r *Router) handleTyping(identity string, cmd domain.TypingCommand) error {
	r.typing.Set(cmd.Room, identity, cmd.Typing)

	r.deliver(r.registry.SinksForRoom(cmd.Room), event.Status{
		Msg:  r.typing.StatusFor(cmd.Room, identity),
		Type: event.StatusTyping,
		Room: cmd.Room,
	})
	return nil
}

// handleSearch answers the requester only. The index is eventually
// consistent: a message becomes findable once the indexer worker has
// drained it.
func (r *Router) handleSearch(ctx context.Context, connID string, cmd domain.SearchCommand) error {
	if r.index == nil {
		r.log.Debug("Search requested but index is disabled")
		return nil
	}

	limit := cmd.Limit
	if limit <= 0 || limit > r.searchLimit {
		limit = r.searchLimit
	}

	hits, err := r.index.Search(ctx, cmd.Room, cmd.Query, limit)
	if err != nil {
		return fmt.Errorf("search %q: %w", cmd.Query, err)
	}

	results := make([]event.SearchHit, len(hits))
	for i, hit := range hits {
		results[i] = event.SearchHit{
			Room:      hit.Room,
			Index:     hit.Index,
			Username:  hit.Author,
			Msg:       hit.Body,
			Timestamp: hit.SentAt,
		}
	}

	if sink, ok := r.registry.SinkFor(connID); ok {
		r.deliver([]contract.EventSink{sink}, event.SearchResults{
			Room:    cmd.Room,
			Query:   cmd.Query,
			Results: results,
		})
	}
	return nil
}

// broadcastRoster sends the active-users list to every connection.
func (r *Router) broadcastRoster() {
	r.deliver(r.registry.AllSinks(), event.ActiveUsers{
		Users: r.registry.ActiveIdentities(),
	})
}

// deliver pushes one outbound event to each sink. State locks are
// already released by the time this runs; sinks queue without blocking
// and a full buffer only costs that one recipient the event.
func (r *Router) deliver(sinks []contract.EventSink, e event.Outbound) {
	for _, sink := range sinks {
		if err := sink.Deliver(e); err != nil {
			r.log.Debug("Outbound delivery skipped", "event", e.Name(), "error", err)
		}
	}
}

func (r *Router) enqueueForIndex(doc search.Document) {
	if r.indexQueue == nil {
		return
	}
	select {
	case r.indexQueue <- doc:
	default:
		r.log.Debug("Index queue full, message not indexed", "room", doc.Room, "index", doc.Index)
	}
}

func (r *Router) drop(cmd domain.Command, err error) {
	r.stats.IncrDropped()
	r.log.Warn("Event dropped", "event", cmd.EventName(), "error", err)
}
