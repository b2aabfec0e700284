// Package server streams game snapshots to websocket spectators and feeds
// their control input back into the frame loop.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/input"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/game"
	"github.com/zeusync/asteroids/pkg/generic"
)

const shutdownTimeout = 5 * time.Second

// Server is safe for concurrent use. Broadcast is meant to be called from the
// frame loop; everything else may be called from any goroutine.
type Server struct {
	cfg      config.Server
	remote   *input.Remote
	logger   log.Log
	upgrader websocket.Upgrader
	buffers  *generic.Pool[*bytes.Buffer]

	mu       sync.RWMutex
	sessions map[string]*session
	latest   []byte
	digest   uint64
	http     *http.Server
	addr     net.Addr

	frame   atomic.Uint64
	dropped atomic.Uint64
	running atomic.Bool
	closed  atomic.Bool
}

// Health is the body served on /healthz.
type Health struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Frame    uint64 `json:"frame"`
	Dropped  uint64 `json:"dropped"`
}

// New builds a server. remote may be nil, in which case client input is
// read and discarded.
func New(cfg config.Server, remote *input.Remote, logger log.Log) *Server {
	return &Server{
		cfg:    cfg,
		remote: remote,
		logger: logger.With(log.String("component", "server")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		buffers: generic.NewPool(func() *bytes.Buffer {
			return bytes.NewBuffer(make([]byte, 0, 4096))
		}, (*bytes.Buffer).Reset, 2),
		sessions: make(map[string]*session),
	}
}

// Handler routes /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start listens on the configured address and serves until ctx is done or
// the listener fails. Cancelling ctx shuts the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.logger.Info("server listening", log.String("addr", ln.Addr().String()))

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Addr returns the bound address once Start is listening.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Shutdown closes every session and stops the HTTP server. It is safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	clear(s.sessions)
	srv := s.http
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
	s.logger.Info("server stopped", log.Int("sessions_closed", len(sessions)))
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Sessions returns the number of connected spectators.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Broadcast queues snap for every session whose last delivered snapshot has a
// different digest, and returns how many sessions it was queued for. The
// snapshot is encoded at most once.
func (s *Server) Broadcast(snap game.Snapshot) (int, error) {
	if s.closed.Load() {
		return 0, ErrServerClosed
	}
	s.frame.Store(snap.Frame)

	payload, err := s.encode(snap)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest, s.digest = payload, snap.Digest
	sent := 0
	for _, sess := range s.sessions {
		if sess.delivered && sess.lastDigest == snap.Digest {
			continue
		}
		if !sess.offer(payload) {
			s.dropped.Add(1)
			continue
		}
		sess.lastDigest = snap.Digest
		sess.delivered = true
		sent++
	}
	return sent, nil
}

func (s *Server) encode(snap game.Snapshot) ([]byte, error) {
	buf := s.buffers.Get()
	defer s.buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot %d: %w", snap.Frame, err)
	}
	return bytes.Clone(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.closed.Load() {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	s.mu.RLock()
	full := s.full()
	s.mu.RUnlock()
	if full {
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	sess := newSession(conn, s.logger)
	if err := s.register(sess); err != nil {
		sess.logger.Warn("session rejected", log.Error(err))
		sess.reject(err)
		return
	}
	sess.logger.Info("session opened", log.String("remote", r.RemoteAddr))

	go sess.writeLoop()
	sess.readLoop(s.remote)

	s.unregister(sess)
	sess.logger.Info("session closed")
}

// register adds sess and queues the latest snapshot so a new spectator does
// not wait for the world to change. The client cap is checked here, under the
// lock, since the pre-upgrade check in the handler can race.
func (s *Server) register(sess *session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrServerClosed
	}
	if s.full() {
		return ErrMaxClientsReached
	}
	s.sessions[sess.id] = sess
	if s.latest != nil && sess.offer(s.latest) {
		sess.lastDigest = s.digest
		sess.delivered = true
	}
	return nil
}

// full reports whether the session cap is reached. Callers hold s.mu.
func (s *Server) full() bool {
	return s.cfg.MaxClients > 0 && len(s.sessions) >= s.cfg.MaxClients
}

func (s *Server) unregister(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status, code := "ok", http.StatusOK
	if s.closed.Load() {
		status, code = "closed", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Health{
		Status:   status,
		Sessions: s.Sessions(),
		Frame:    s.frame.Load(),
		Dropped:  s.dropped.Load(),
	})
}
