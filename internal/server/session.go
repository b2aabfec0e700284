package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/asteroids/internal/core/input"
	"github.com/zeusync/asteroids/internal/core/observability/log"
)

const (
	sendBuffer     = 8
	writeWait      = 2 * time.Second
	maxMessageSize = 1024
)

// session is one connected spectator. Snapshots are queued on send and written
// by a dedicated goroutine; a slow client drops frames instead of stalling the
// game loop.
type session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	logger log.Log

	// guarded by Server.mu
	lastDigest uint64
	delivered  bool

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(conn *websocket.Conn, logger log.Log) *session {
	id := uuid.NewString()
	return &session{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: logger.With(log.String("session", id)),
		done:   make(chan struct{}),
	}
}

// offer queues payload without blocking and reports whether it was queued.
func (s *session) offer(payload []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

func (s *session) writeLoop() {
	defer s.close()
	for {
		select {
		case <-s.done:
			return
		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Debug("write failed", log.Error(err))
				return
			}
		}
	}
}

// readLoop forwards control states to remote until the connection fails.
func (s *session) readLoop(remote *input.Remote) {
	defer s.close()
	s.conn.SetReadLimit(maxMessageSize)
	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("read failed", log.Error(err))
			}
			return
		}
		state, err := decodeState(kind, data)
		if err != nil {
			s.logger.Warn("input rejected", log.Error(err))
			continue
		}
		if remote != nil {
			remote.Set(state)
		}
	}
}

func decodeState(kind int, data []byte) (input.State, error) {
	var state input.State
	if kind != websocket.TextMessage {
		return state, fmt.Errorf("%w: expected a text frame", ErrInvalidMessage)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return state, nil
}

func (s *session) close() { s.closeWith(websocket.CloseNormalClosure, "") }

// reject closes a session that never started, telling the client why.
func (s *session) reject(reason error) { s.closeWith(websocket.CloseTryAgainLater, reason.Error()) }

func (s *session) closeWith(code int, text string) {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, text),
			time.Now().Add(writeWait),
		)
		_ = s.conn.Close()
	})
}
