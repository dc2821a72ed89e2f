// Package nats publishes graph diffs of editing sessions on NATS subjects.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aretw0/quiver/pkg/domain"
)

// SubjectPrefix is the root of every subject used by this package.
const SubjectPrefix = "quiver.session."

// Subject returns the subject diffs of sessionID are published on.
// NATS tokens cannot contain dots or spaces, so those are replaced.
func Subject(sessionID string) string {
	return SubjectPrefix + strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(sessionID) + ".diff"
}

// AllSubjects matches the diffs of every session.
const AllSubjects = SubjectPrefix + "*.diff"

// Publisher publishes JSON-encoded diffs.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to url.
func NewPublisher(url string, opts ...nats.Option) (*Publisher, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &Publisher{conn: nc}, nil
}

// Publish sends diff to the subject of its session.
func (p *Publisher) Publish(ctx context.Context, diff *domain.GraphDiff) error {
	if diff == nil {
		return nil
	}
	data, err := json.Marshal(diff)
	if err != nil {
		return fmt.Errorf("marshaling diff: %w", err)
	}
	return p.conn.Publish(Subject(diff.SessionID), data)
}

// Flush waits for the server to acknowledge published messages.
func (p *Publisher) Flush() error {
	return p.conn.Flush()
}

func (p *Publisher) Close() error {
	p.conn.Close()
	return nil
}

// Subscriber receives diffs published by any Publisher.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber connects with automatic reconnection.
func NewSubscriber(url string, opts ...nats.Option) (*Subscriber, error) {
	defaults := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &Subscriber{conn: nc}, nil
}

// Subscribe delivers decoded diffs published on subject (wildcards allowed).
// Undecodable payloads are skipped. Call cancel to unsubscribe and close the channel.
func (s *Subscriber) Subscribe(subject string) (<-chan *domain.GraphDiff, func(), error) {
	ch := make(chan *domain.GraphDiff, 64)

	var (
		mu     sync.Mutex
		closed bool
		once   sync.Once
	)

	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		var diff domain.GraphDiff
		if err := json.Unmarshal(msg.Data, &diff); err != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- &diff:
		default:
			// Drop when full rather than block the NATS client.
		}
	})
	if err != nil {
		close(ch)
		return nil, nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	// Make sure the server registered the subscription before returning.
	if err := s.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		close(ch)
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}

	cancel := func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}
	return ch, cancel, nil
}

func (s *Subscriber) Close() error {
	s.conn.Close()
	return nil
}
