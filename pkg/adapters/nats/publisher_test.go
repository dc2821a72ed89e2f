package nats_test

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quivernats "github.com/aretw0/quiver/pkg/adapters/nats"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

var _ ports.DiffPublisher = (*quivernats.Publisher)(nil)

func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "quiver.session.abc.diff", quivernats.Subject("abc"))
	assert.Equal(t, "quiver.session.a_b_c.diff", quivernats.Subject("a.b c"))
}

func TestPublisher_RoundTrip(t *testing.T) {
	url := startTestNATS(t)

	pub, err := quivernats.NewPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	sub, err := quivernats.NewSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(quivernats.AllSubjects)
	require.NoError(t, err)
	defer cancel()

	last := 2
	diff := &domain.GraphDiff{
		SessionID:        "s1",
		AddedStates:      []domain.StateRecord{{ID: "2"}},
		AddedTransitions: []domain.TransitionRecord{{Source: "1", Target: "2", Label: "b"}},
		LastStateID:      &last,
	}
	require.NoError(t, pub.Publish(context.Background(), diff))
	require.NoError(t, pub.Publish(context.Background(), nil), "nil diffs are skipped")
	require.NoError(t, pub.Flush())

	select {
	case got := <-ch:
		assert.Equal(t, diff, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published diff")
	}
}

func TestSubscriber_CancelClosesChannel(t *testing.T) {
	url := startTestNATS(t)
	sub, err := quivernats.NewSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(quivernats.Subject("x"))
	require.NoError(t, err)
	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open)
}
