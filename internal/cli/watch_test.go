package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/adapters/nats"
	"github.com/aretw0/quiver/pkg/domain"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(srv.Shutdown)
	require.True(t, srv.ReadyForConnections(5*time.Second), "embedded NATS not ready")
	return srv.ClientURL()
}

// watchUntil publishes diff until the watcher output satisfies done.
func watchUntil(t *testing.T, opts WatchOptions, diff *domain.GraphDiff, done func(string) bool) string {
	t.Helper()
	out := &lockedBuffer{}
	opts.Output = out

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- Watch(ctx, opts) }()

	pub, err := nats.NewPublisher(opts.URL)
	require.NoError(t, err)
	defer pub.Close()

	assert.Eventually(t, func() bool {
		_ = pub.Publish(context.Background(), diff)
		_ = pub.Flush()
		return done(out.String())
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
	return out.String()
}

func TestWatch_Text(t *testing.T) {
	url := startNATS(t)
	diff := &domain.GraphDiff{
		SessionID:          "s1",
		AddedStates:        []domain.StateRecord{{ID: "2"}},
		RemovedTransitions: []domain.TransitionRecord{{Source: "0", Target: "1", Label: "b"}},
	}

	out := watchUntil(t, WatchOptions{URL: url, SessionID: "s1"}, diff, func(s string) bool {
		return strings.Contains(s, `- 0 -> 1 "b"`)
	})
	assert.Contains(t, out, "[s1]")
	assert.Contains(t, out, "+ state 2")
}

func TestWatch_JSON(t *testing.T) {
	url := startNATS(t)
	diff := &domain.GraphDiff{SessionID: "s2", PinnedStates: []domain.ID{"3"}}

	out := watchUntil(t, WatchOptions{URL: url, JSON: true}, diff, func(s string) bool {
		return strings.Contains(s, "\n")
	})
	line, _, _ := strings.Cut(out, "\n")
	var got domain.GraphDiff
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, *diff, got)
}

func TestWatch_RequiresURL(t *testing.T) {
	require.Error(t, Watch(context.Background(), WatchOptions{}))
}
