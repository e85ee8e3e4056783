// Package server broadcasts running bouts to websocket subscribers and
// relays remote-control commands.
//
// The simulation never depends on the server: a Runner drives bouts and
// publishes each round through the Hub, which is a plain bout.Observer.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server couples the HTTP routes with a bout runner.
type Server struct {
	addr       string
	httpServer *http.Server
	runner     *Runner
	hub        *Hub
	logger     *slog.Logger
}

// New creates a server listening on addr.
func New(addr string, runner *Runner, hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		addr: addr,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(hub, runner),
			ReadHeaderTimeout: 10 * time.Second,
		},
		runner: runner,
		hub:    hub,
		logger: logger,
	}
}

// ListenAndServe runs the runner and the HTTP server until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runnerErr := make(chan error, 1)
	go func() {
		runnerErr <- s.runner.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	s.logger.Info("server listening", "addr", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	var result error
	select {
	case <-ctx.Done():
	case err := <-runnerErr:
		if err != nil {
			result = fmt.Errorf("run bouts: %w", err)
		} else {
			// The runner finished its bouts; keep serving the final state.
			select {
			case <-ctx.Done():
			case err := <-serveErr:
				return serveError(err)
			}
		}
	case err := <-serveErr:
		return serveError(err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return result
}

func serveError(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serve http: %w", err)
}
