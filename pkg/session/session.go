package session

import (
	"sync"
	"time"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/domain"
)

// subscriberBuffer is the number of diffs queued per subscriber before drops.
const subscriberBuffer = 32

// Session is a live editor with its host document.
type Session struct {
	ID      string
	Editor  *quiver.Editor
	Doc     *memory.Document
	Created time.Time

	mu     sync.Mutex
	subs   map[int]chan *domain.GraphDiff
	next   int
	closed bool
}

// Subscribe returns a channel receiving the diffs of this session.
// Slow subscribers miss diffs rather than block the editor.
// The channel is closed by cancel or when the session is deleted.
func (s *Session) Subscribe() (<-chan *domain.GraphDiff, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *domain.GraphDiff, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.next
	s.next++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Subscribers reports the number of active subscribers.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Session) broadcast(diff *domain.GraphDiff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- diff:
		default:
		}
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
