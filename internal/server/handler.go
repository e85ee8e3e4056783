package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/roach88/touche/internal/bout"
)

// SnapshotSource reports the state of the bout being played. It returns
// false when there is nothing to show yet.
type SnapshotSource interface {
	Snapshot() (bout.Snapshot, bool)
}

// ActionResponse is the body returned by POST /action/{fencer}/{action}.
type ActionResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

// NewHandler creates the broadcast routes on top of hub. GET /snapshot is
// answered from snapshots, which may be nil when no bout is driven.
//
//	GET  /up                        liveness
//	GET  /ws                        subscribe to frames
//	GET  /snapshot                  current snapshot, 404 before its first round
//	POST /action/{fencer}/{action}  relay a remote-control command
func NewHandler(hub *Hub, snapshots SnapshotSource) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, hub)
	})
	mux.Handle("GET /ws", wsHandler)

	mux.HandleFunc("GET /snapshot", func(w http.ResponseWriter, r *http.Request) {
		var (
			snap bout.Snapshot
			ok   bool
		)
		if snapshots != nil {
			snap, ok = snapshots.Snapshot()
		}
		if !ok {
			http.Error(w, "no bout in progress", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	mux.HandleFunc("POST /action/{fencer}/{action}", func(w http.ResponseWriter, r *http.Request) {
		cmd, err := ParseCommand(r.PathValue("fencer"), r.PathValue("action"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		hub.logger.Info("action received", "fencer", cmd.Fencer, "action", cmd.Action)
		n := hub.Broadcast(Frame{Type: FrameCommand, Payload: cmd})
		writeJSON(w, http.StatusOK, ActionResponse{Status: "sent", Connections: n})
	})

	return mux
}

func handleWSConn(conn *websocket.Conn, hub *Hub) {
	defer func() {
		_ = conn.Close()
	}()

	p := hub.newPeer(conn)
	if err := hub.join(p); err != nil {
		hub.leave(p)
		return
	}
	defer hub.leave(p)

	// Client frames are echoed back; anything that is not JSON ends the
	// connection.
	decoder := json.NewDecoder(conn)
	for {
		var msg json.RawMessage
		if err := decoder.Decode(&msg); err != nil {
			if !errors.Is(err, io.EOF) {
				hub.logger.Debug("closing client", "error", err)
			}
			return
		}
		if err := p.writeFrame(Frame{Type: FrameReceived, Payload: msg}); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
