package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/touche/internal/bout"
)

// Frame types sent to subscribers.
const (
	FrameSnapshot    = "snapshot"
	FrameRound       = "round"
	FrameCommand     = "command"
	FrameBoutStarted = "bout_started"
	FrameReceived    = "received"
)

// Frame is the envelope of every websocket message.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// RoundPayload is the payload of a round frame.
type RoundPayload struct {
	Snapshot bout.Snapshot     `json:"snapshot"`
	Outcome  bout.RoundOutcome `json:"outcome"`
}

// BoutStartedPayload announces a new bout and the seed that replays it.
type BoutStartedPayload struct {
	BoutID string `json:"bout_id"`
	Seed   uint64 `json:"seed"`
}

// defaultWriteTimeout bounds each frame write to a subscriber.
const defaultWriteTimeout = 5 * time.Second

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

type peer struct {
	mu      sync.Mutex
	w       io.Writer
	encoder *json.Encoder
	timeout time.Duration
}

func newPeer(w io.Writer, timeout time.Duration) *peer {
	return &peer{w: w, encoder: json.NewEncoder(w), timeout: timeout}
}

func (p *peer) writeFrame(frame Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.w.(writeDeadliner); ok && p.timeout > 0 {
		if err := d.SetWriteDeadline(time.Now().Add(p.timeout)); err != nil {
			return err
		}
	}
	return p.encoder.Encode(frame)
}

// close ends the underlying connection, if it has one.
func (p *peer) close() {
	if c, ok := p.w.(io.Closer); ok {
		_ = c.Close()
	}
}

// Hub fans frames out to every connected subscriber and remembers the
// latest snapshot for late joiners. It is a bout.Observer.
type Hub struct {
	logger       *slog.Logger
	writeTimeout time.Duration

	mu     sync.Mutex
	peers  map[*peer]struct{}
	latest *bout.Snapshot
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		logger:       logger,
		writeTimeout: defaultWriteTimeout,
		peers:        make(map[*peer]struct{}),
	}
}

// newPeer creates a subscriber on w using the hub's write timeout.
func (h *Hub) newPeer(w io.Writer) *peer {
	return newPeer(w, h.writeTimeout)
}

// join registers p and sends it the latest snapshot, if any.
func (h *Hub) join(p *peer) error {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	latest := h.latest
	n := len(h.peers)
	h.mu.Unlock()

	h.logger.Info("client connected", "connections", n)
	if latest == nil {
		return nil
	}
	return p.writeFrame(Frame{Type: FrameSnapshot, Payload: latest})
}

func (h *Hub) leave(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	n := len(h.peers)
	h.mu.Unlock()

	if ok {
		h.logger.Info("client disconnected", "connections", n)
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Broadcast writes frame to every subscriber. Subscribers whose write
// fails or times out are dropped and closed. It returns the number still
// connected.
func (h *Hub) Broadcast(frame Frame) int {
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	var dead []*peer
	for _, p := range peers {
		if err := p.writeFrame(frame); err != nil {
			dead = append(dead, p)
		}
	}

	h.mu.Lock()
	for _, p := range dead {
		delete(h.peers, p)
	}
	n := len(h.peers)
	h.mu.Unlock()

	for _, p := range dead {
		p.close()
	}

	if len(dead) > 0 {
		h.logger.Info("dropped dead clients", "dropped", len(dead), "connections", n)
	}
	return n
}

// Publish records snap as the latest snapshot without broadcasting it.
func (h *Hub) Publish(snap bout.Snapshot) {
	h.mu.Lock()
	h.latest = &snap
	h.mu.Unlock()
}

// ObserveRound publishes the snapshot and broadcasts a round frame.
func (h *Hub) ObserveRound(snap bout.Snapshot, out bout.RoundOutcome) {
	h.Publish(snap)
	h.Broadcast(Frame{Type: FrameRound, Payload: RoundPayload{Snapshot: snap, Outcome: out}})
}
