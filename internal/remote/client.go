// Package remote sends remote-control commands to a running broadcast
// server.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/roach88/touche/internal/server"
)

// DefaultThrottle is the minimum gap between two identical commands.
const DefaultThrottle = 100 * time.Millisecond

// ErrThrottled is returned when an identical command was sent less than
// the throttle interval ago. Nothing is sent.
var ErrThrottled = errors.New("command throttled")

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}

// Client posts commands to /action/{fencer}/{action}.
type Client struct {
	baseURL  string
	http     *http.Client
	throttle time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu   sync.Mutex
	last map[server.Command]time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithThrottle sets the minimum gap between identical commands. Zero
// disables throttling.
func WithThrottle(d time.Duration) Option {
	return func(c *Client) { c.throttle = d }
}

// WithClock replaces time.Now for throttling.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger for sent and failed commands.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the server at baseURL, e.g.
// "http://127.0.0.1:8000".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     http.DefaultClient,
		throttle: DefaultThrottle,
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
		last:     make(map[server.Command]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send posts one command. Unknown sides or actions are rejected locally
// with server.ErrInvalidCommand before any request is made.
func (c *Client) Send(ctx context.Context, fencer, action string) (server.ActionResponse, error) {
	cmd, err := server.ParseCommand(fencer, action)
	if err != nil {
		return server.ActionResponse{}, err
	}
	if !c.admit(cmd) {
		return server.ActionResponse{}, ErrThrottled
	}

	endpoint := fmt.Sprintf("%s/action/%s/%s", c.baseURL, url.PathEscape(cmd.Fencer), url.PathEscape(cmd.Action))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return server.ActionResponse{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("failed to send action", "fencer", cmd.Fencer, "action", cmd.Action, "error", err)
		return server.ActionResponse{}, fmt.Errorf("send %s %s: %w", cmd.Fencer, cmd.Action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return server.ActionResponse{}, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var out server.ActionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return server.ActionResponse{}, fmt.Errorf("decode response: %w", err)
	}
	c.logger.Info("sent", "fencer", cmd.Fencer, "action", cmd.Action, "connections", out.Connections)
	return out, nil
}

// admit records cmd and reports whether it may be sent now.
func (c *Client) admit(cmd server.Command) bool {
	if c.throttle <= 0 {
		return true
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.last[cmd]; ok && now.Sub(prev) < c.throttle {
		return false
	}
	c.last[cmd] = now
	return true
}
