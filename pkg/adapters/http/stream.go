package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/aretw0/quiver/pkg/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the outgoing websocket message format.
type wsMessage struct {
	Type      string            `json:"type"` // "hello", "mutations", "diff" or "error"
	SessionID string            `json:"session_id"`
	Mutations []domain.Mutation `json:"mutations,omitempty"`
	Diff      *domain.GraphDiff `json:"diff,omitempty"`
	Snapshot  *domain.Snapshot  `json:"snapshot,omitempty"`
	Error     string            `json:"error,omitempty"`
}

const wsWriteWait = 10 * time.Second

// websocket reads event objects from the client and writes back the
// resulting mutations, interleaved with the diffs of the session.
func (s *Server) websocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "session_id", sess.ID, "err", err)
		return
	}
	defer conn.Close()

	diffs, cancel := sess.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	// Single writer: gorilla connections allow one concurrent writer.
	out := make(chan wsMessage, 16)
	send := func(msg wsMessage) {
		select {
		case out <- msg:
		case <-ctx.Done():
		}
	}
	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(msg); err != nil {
					s.logger.Debug("websocket write failed", "session_id", sess.ID, "err", err)
					return
				}
			}
		}
	}()

	send(wsMessage{Type: "hello", SessionID: sess.ID, Snapshot: sess.Editor.Snapshot()})

	go func() {
		defer stop()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug("websocket read failed", "session_id", sess.ID, "err", err)
				}
				return
			}
			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				send(wsMessage{Type: "error", SessionID: sess.ID, Error: "invalid message format"})
				continue
			}
			muts, err := s.dispatch(ctx, sess, []map[string]any{raw})
			if err != nil {
				send(wsMessage{Type: "error", SessionID: sess.ID, Error: err.Error()})
				continue
			}
			send(wsMessage{Type: "mutations", SessionID: sess.ID, Mutations: muts})
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case diff, ok := <-diffs:
			if !ok {
				return
			}
			send(wsMessage{Type: "diff", SessionID: sess.ID, Diff: diff})
		}
	}
}

// stream sends the diffs of a session as server-sent events.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	diffs, cancel := sess.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "session_id", sess.ID)
			return
		case diff, ok := <-diffs:
			if !ok {
				fmt.Fprintf(w, "event: closed\ndata: %s\n\n", sess.ID)
				flusher.Flush()
				return
			}
			payload, err := json.Marshal(diff)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
