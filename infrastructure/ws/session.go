// Package ws is the websocket transport adapter: it upgrades
// authenticated HTTP requests, decodes inbound envelopes into engine
// commands, and delivers outbound events through per-connection
// buffered queues. The engine never touches a socket directly.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-engine/domain/event"
	"chat-engine/errors"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// outEnvelope is the wire frame for every outbound event.
type outEnvelope struct {
	Event string         `json:"event"`
	Data  event.Outbound `json:"data"`
}

// session is one live websocket connection. It implements
// contract.EventSink: Deliver queues without blocking, so the engine
// can fan out while holding no locks and without waiting on slow
// clients. A full queue drops the event for that one recipient.
type session struct {
	id       string
	identity string
	conn     *websocket.Conn
	send     chan []byte
	log      *slog.Logger

	mu     sync.RWMutex
	closed bool
}

func newSession(conn *websocket.Conn, identity string, bufferSize int, log *slog.Logger) *session {
	id := uuid.NewString()
	return &session{
		id:       id,
		identity: identity,
		conn:     conn,
		send:     make(chan []byte, bufferSize),
		log:      log.With("conn_id", id, "username", identity),
	}
}

// Deliver implements contract.EventSink.
func (s *session) Deliver(e event.Outbound) error {
	data, err := json.Marshal(outEnvelope{Event: e.Name(), Data: e})
	if err != nil {
		return err
	}
	return s.trySend(data)
}

func (s *session) trySend(data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errors.ErrConnectionClosed
	}
	select {
	case s.send <- data:
		return nil
	default:
		return errors.ErrBackpressure
	}
}

// close marks the session dead and wakes the write pump. Safe to call
// more than once; disconnect and pump teardown both reach here.
func (s *session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	s.mu.Unlock()

	_ = s.conn.Close()
}

// readPump consumes inbound frames until the connection dies. It runs
// on the connection's goroutine; dispatch into the engine happens
// inline, which preserves per-connection event order.
func (s *session) readPump(ctx context.Context, readLimit int64, dispatch func(ctx context.Context, connID string, data []byte)) {
	defer s.close()

	s.conn.SetReadLimit(readLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("Read pump closing", "error", err)
			}
			return
		}
		dispatch(ctx, s.id, data)
	}
}

// writePump drains the send queue to the socket and keeps the
// connection alive with pings. It owns all writes; nothing else may
// touch the socket's write side.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Debug("Write pump closing", "error", err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
