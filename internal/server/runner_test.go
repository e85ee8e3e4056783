package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/rules"
)

func quickConfig() bout.Config {
	cfg := bout.DefaultConfig(
		bout.FencerConfig{Name: "Alice", Skill: 0.9},
		bout.FencerConfig{Name: "Bob", Skill: 0.8},
	)
	cfg.WinThreshold = 1
	cfg.StartDistance = rules.Lunge
	return cfg
}

func TestNewRunner_Validates(t *testing.T) {
	cfg := quickConfig()
	cfg.WinThreshold = 0
	_, err := NewRunner(RunnerConfig{Bout: cfg, Seed: 1}, NewHub(nil), nil)
	assert.True(t, bout.IsConfigError(err))

	_, err = NewRunner(RunnerConfig{Bout: quickConfig()}, NewHub(nil), nil)
	assert.ErrorContains(t, err, "seed must be non-zero")
}

func TestRunner_PlaysBoutsWithConsecutiveSeeds(t *testing.T) {
	hub := NewHub(nil)
	var frames bytes.Buffer
	require.NoError(t, hub.join(hub.newPeer(&frames)))

	r, err := NewRunner(RunnerConfig{Bout: quickConfig(), Seed: 5, Bouts: 2}, hub, nil)
	require.NoError(t, err)
	_, ok := r.Snapshot()
	assert.False(t, ok)

	require.NoError(t, r.Run(context.Background()))

	var seeds []uint64
	rounds := 0
	for _, f := range decodeFrames(t, frames.Bytes()) {
		switch frameType(t, f) {
		case FrameBoutStarted:
			var p BoutStartedPayload
			require.NoError(t, json.Unmarshal(f["payload"], &p))
			assert.NotEmpty(t, p.BoutID)
			seeds = append(seeds, p.Seed)
		case FrameRound:
			rounds++
		}
	}
	assert.Equal(t, []uint64{5, 6}, seeds)
	assert.Positive(t, rounds)

	snap, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, bout.PhaseFinished, snap.Phase)

	last, ok := latest(hub)
	require.True(t, ok)
	assert.Equal(t, snap, last)
}

func TestRunner_RoundCapEndsBout(t *testing.T) {
	cfg := quickConfig()
	cfg.WinThreshold = 1000
	r, err := NewRunner(RunnerConfig{Bout: cfg, Seed: 9, MaxRounds: 10, Bouts: 1}, NewHub(nil), nil)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))
	snap, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 10, snap.Round)
	assert.Equal(t, bout.PhaseInProgress, snap.Phase)
}

func TestRunner_NoSnapshotBeforeFirstRound(t *testing.T) {
	hub := NewHub(nil)

	r, err := NewRunner(RunnerConfig{Bout: quickConfig(), Seed: 2, RoundDelay: time.Hour}, hub, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.current != nil
	}, 2*time.Second, 5*time.Millisecond)

	_, ok := r.Snapshot()
	assert.False(t, ok, "bout has not resolved a round")
	_, ok = latest(hub)
	assert.False(t, ok, "nothing published before the first round")
}

func TestRunner_StopsOnCancel(t *testing.T) {
	r, err := NewRunner(RunnerConfig{Bout: quickConfig(), Seed: 1, RoundDelay: time.Hour}, NewHub(nil), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	hub := NewHub(nil)
	r, err := NewRunner(RunnerConfig{Bout: quickConfig(), Seed: 3, RoundDelay: time.Millisecond}, hub, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := New(addr, r, hub, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	assert.Eventually(t, func() bool {
		_, ok := latest(hub)
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
