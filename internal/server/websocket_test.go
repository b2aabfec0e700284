package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/input"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/game"
)

func newTestServer(t *testing.T, cfg config.Server) (*Server, *input.Remote, string) {
	t.Helper()
	remote := input.NewRemote()
	srv := New(cfg, remote, log.NewNop())
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return srv, remote, hs.URL
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) game.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var snap game.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	return snap
}

func snapshot(frame, digest uint64) game.Snapshot {
	return game.Snapshot{
		Frame:    frame,
		Digest:   digest,
		Entities: []game.Entity{{ID: 1, Kind: "ship", X: 1, Y: 2, Radius: 12, Visible: true, State: "alive"}},
	}
}

func TestBroadcastSkipsUnchangedDigest(t *testing.T) {
	srv, _, url := newTestServer(t, config.Server{})
	conn := dial(t, url)
	require.Eventually(t, func() bool { return srv.Sessions() == 1 }, time.Second, 5*time.Millisecond)

	sent, err := srv.Broadcast(snapshot(1, 100))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	got := readSnapshot(t, conn)
	assert.Equal(t, uint64(1), got.Frame)
	assert.Equal(t, 1, got.Count("ship"))

	sent, err = srv.Broadcast(snapshot(2, 100))
	require.NoError(t, err)
	assert.Zero(t, sent)

	sent, err = srv.Broadcast(snapshot(3, 200))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, uint64(3), readSnapshot(t, conn).Frame)
}

func TestNewSessionReceivesLatestSnapshot(t *testing.T) {
	srv, _, url := newTestServer(t, config.Server{})
	_, err := srv.Broadcast(snapshot(7, 42))
	require.NoError(t, err)

	conn := dial(t, url)
	assert.Equal(t, uint64(7), readSnapshot(t, conn).Frame)

	sent, err := srv.Broadcast(snapshot(8, 42))
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestClientInputReachesRemote(t *testing.T) {
	srv, remote, url := newTestServer(t, config.Server{})
	conn := dial(t, url)
	require.Eventually(t, func() bool { return srv.Sessions() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(input.State{Thrust: true, Fire: true}))

	require.Eventually(t, func() bool { return remote.Poll().Thrust }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, srv.Sessions())
}

func TestDecodeStateRejectsBinaryFrames(t *testing.T) {
	_, err := decodeState(websocket.BinaryMessage, []byte(`{"left":true}`))
	require.ErrorIs(t, err, ErrInvalidMessage)

	_, err = decodeState(websocket.TextMessage, []byte(`{`))
	require.ErrorIs(t, err, ErrInvalidMessage)

	st, err := decodeState(websocket.TextMessage, []byte(`{"left":true}`))
	require.NoError(t, err)
	assert.True(t, st.Left)
}

func TestMaxClients(t *testing.T) {
	srv, _, url := newTestServer(t, config.Server{MaxClients: 1})
	dial(t, url)
	require.Eventually(t, func() bool { return srv.Sessions() == 1 }, time.Second, 5*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSessionUnregistersOnClose(t *testing.T) {
	srv, _, url := newTestServer(t, config.Server{})
	conn := dial(t, url)
	require.Eventually(t, func() bool { return srv.Sessions() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return srv.Sessions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHealth(t *testing.T) {
	srv, _, url := newTestServer(t, config.Server{})
	_, err := srv.Broadcast(snapshot(12, 1))
	require.NoError(t, err)

	resp, err := http.Get(url + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var h Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, uint64(12), h.Frame)
	assert.Zero(t, h.Sessions)
}

func TestStartAndShutdown(t *testing.T) {
	srv := New(config.Server{Addr: "127.0.0.1:0"}, nil, log.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 5*time.Millisecond)
	conn := dial(t, "http://"+srv.Addr().String())
	require.Eventually(t, func() bool { return srv.Sessions() == 1 }, time.Second, 5*time.Millisecond)

	require.ErrorIs(t, srv.Start(ctx), ErrServerAlreadyRunning)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.Zero(t, srv.Sessions())
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	_, err = srv.Broadcast(snapshot(1, 1))
	require.ErrorIs(t, err, ErrServerClosed)
	require.ErrorIs(t, srv.Start(context.Background()), ErrServerClosed)
}

func TestRegisterEnforcesCapUnderLock(t *testing.T) {
	srv := New(config.Server{MaxClients: 2}, nil, log.NewNop())
	newSess := func(i int) *session {
		return &session{id: fmt.Sprint(i), send: make(chan []byte, 1), done: make(chan struct{})}
	}

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
		rejected atomic.Int64
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := srv.register(newSess(i)); {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrMaxClientsReached):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2), accepted.Load())
	assert.Equal(t, int64(14), rejected.Load())
	assert.Equal(t, 2, srv.Sessions())
}
