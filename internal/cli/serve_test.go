package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the server's logging goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServe_InvalidEnvironment(t *testing.T) {
	t.Setenv("TOUCHE_ROUND_DELAY", "soon")

	_, _, err := execute(t, "serve")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid environment")
}

func TestServe_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative round delay", []string{"serve", "--round-delay", "-1s"}},
		{"negative bout pause", []string{"serve", "--bout-pause", "-1s"}},
		{"negative bouts", []string{"serve", "--bouts", "-1"}},
		{"invalid bout", []string{"serve", "--a-skill", "1.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Setenv("TOUCHE_SEED", "5")

	cmd := NewRootCommand()
	var out bytes.Buffer
	errOut := &syncBuffer{}
	cmd.SetOut(&out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0",
		"--round-delay", "1ms", "--bout-pause", "1ms", "--bouts", "1",
		"--a-skill", "1", "--b-skill", "0", "--to", "1", "--start", "lunge"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		logs := errOut.String()
		return strings.Contains(logs, "bout finished") || strings.Contains(logs, "bout abandoned")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop on cancel")
	}
	assert.Contains(t, errOut.String(), "seed=5")
	assert.Contains(t, errOut.String(), "server stopped gracefully")
}
