package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/roach88/touche/internal/bout"
)

type wsTestFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// staticSource serves a fixed snapshot once set.
type staticSource struct {
	mu   sync.Mutex
	snap *bout.Snapshot
}

func (s *staticSource) set(snap bout.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &snap
}

func (s *staticSource) Snapshot() (bout.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return bout.Snapshot{}, false
	}
	return *s.snap, true
}

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	return newSnapshotServer(t, hub, nil)
}

func newSnapshotServer(t *testing.T, hub *Hub, snapshots SnapshotSource) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(hub, snapshots))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsTestFrame {
	t.Helper()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	var got wsTestFrame
	require.NoError(t, json.NewDecoder(conn).Decode(&got))
	return got
}

func post(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHandler_Up(t *testing.T) {
	srv := newTestServer(t, NewHub(nil))
	resp, err := http.Get(srv.URL + "/up")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func getStatus(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestHandler_SnapshotFromSource(t *testing.T) {
	src := &staticSource{}
	srv := newSnapshotServer(t, NewHub(nil), src)

	assert.Equal(t, http.StatusNotFound, getStatus(t, srv.URL+"/snapshot"))

	src.set(testSnapshot(t, "b7"))

	resp, err := http.Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "b7", got["bout_id"])
	assert.Equal(t, "in_progress", got["phase"])
	assert.Equal(t, "medium", got["distance"])
}

func TestHandler_SnapshotWithoutSource(t *testing.T) {
	srv := newTestServer(t, NewHub(nil))
	assert.Equal(t, http.StatusNotFound, getStatus(t, srv.URL+"/snapshot"))
}

func TestHandler_SnapshotFollowsRunner(t *testing.T) {
	hub := NewHub(nil)
	live, err := NewRunner(RunnerConfig{Bout: quickConfig(), Seed: 4, RoundDelay: time.Hour}, hub, nil)
	require.NoError(t, err)
	srv := newSnapshotServer(t, hub, live)

	assert.Equal(t, http.StatusNotFound, getStatus(t, srv.URL+"/snapshot"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- live.Run(ctx) }()
	require.Eventually(t, func() bool {
		live.mu.Lock()
		defer live.mu.Unlock()
		return live.current != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, http.StatusNotFound, getStatus(t, srv.URL+"/snapshot"), "live bout at round 0")
	cancel()
	require.NoError(t, <-done)

	played, err := NewRunner(RunnerConfig{Bout: quickConfig(), Seed: 4, Bouts: 1}, hub, nil)
	require.NoError(t, err)
	require.NoError(t, played.Run(context.Background()))
	srv = newSnapshotServer(t, hub, played)

	resp, err := http.Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "finished", got["phase"])
}

func TestHandler_ActionWithoutSubscribers(t *testing.T) {
	srv := newTestServer(t, NewHub(nil))

	resp, body := post(t, srv.URL+"/action/left/lunge")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"sent","connections":0}`, body)
}

func TestHandler_ActionRejectsUnknownInput(t *testing.T) {
	srv := newTestServer(t, NewHub(nil))

	for _, path := range []string{"/action/middle/lunge", "/action/left/cartwheel"} {
		resp, body := post(t, srv.URL+path)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.Contains(t, body, "invalid command")
	}

	resp, err := http.Get(srv.URL + "/action/left/lunge")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebSocket_ReceivesSnapshotThenCommand(t *testing.T) {
	hub := NewHub(nil)
	hub.Publish(testSnapshot(t, "live"))
	srv := newTestServer(t, hub)

	conn := dialWS(t, srv)
	first := readFrame(t, conn)
	assert.Equal(t, FrameSnapshot, first.Type)
	assert.Contains(t, string(first.Payload), `"bout_id":"live"`)

	resp, body := post(t, srv.URL+"/action/right/parry_6")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"sent","connections":1}`, body)

	got := readFrame(t, conn)
	assert.Equal(t, FrameCommand, got.Type)
	assert.JSONEq(t, `{"fencer":"right","action":"parry_6"}`, string(got.Payload))
}

func TestWebSocket_EchoesClientFrames(t *testing.T) {
	hub := NewHub(nil)
	hub.Publish(testSnapshot(t, "x"))
	srv := newTestServer(t, hub)

	conn := dialWS(t, srv)
	_ = readFrame(t, conn)

	require.NoError(t, json.NewEncoder(conn).Encode(map[string]any{"hello": "piste"}))
	got := readFrame(t, conn)
	assert.Equal(t, FrameReceived, got.Type)
	assert.JSONEq(t, `{"hello":"piste"}`, string(got.Payload))
}

func TestWebSocket_DisconnectLeavesHub(t *testing.T) {
	hub := NewHub(nil)
	hub.Publish(testSnapshot(t, "x"))
	srv := newTestServer(t, hub)

	conn := dialWS(t, srv)
	_ = readFrame(t, conn)
	require.Equal(t, 1, hub.Count())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
