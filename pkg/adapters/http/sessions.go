package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/quiver/internal/presentation/graph"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/session"
)

// createRequest seeds a new session. At most one field is used, in this
// order: a library automaton, a snapshot, daut text. Empty means default.
type createRequest struct {
	Automaton string           `json:"automaton,omitempty"`
	Snapshot  *domain.Snapshot `json:"snapshot,omitempty"`
	Daut      string           `json:"daut,omitempty"`
}

type sessionResponse struct {
	ID       string           `json:"id"`
	Snapshot *domain.Snapshot `json:"snapshot"`
}

type eventsResponse struct {
	Mutations []domain.Mutation `json:"mutations"`
	Revision  uint64            `json:"revision"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.writeError(w, r, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return
	}

	var (
		sess *session.Session
		err  error
	)
	switch {
	case req.Automaton != "":
		sess, err = s.Sessions.CreateFrom(r.Context(), req.Automaton)
	case req.Snapshot != nil:
		sess, err = s.Sessions.Create(r.Context(), req.Snapshot)
	case req.Daut != "":
		snap, _, perr := graph.ParseDaut(req.Daut)
		if perr != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, perr))
			return
		}
		sess, err = s.Sessions.Create(r.Context(), snap)
	default:
		sess, err = s.Sessions.Create(r.Context(), nil)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.Sessions.Inc()
	}

	s.logger.Info("session created", "session_id", sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, Snapshot: sess.Editor.Snapshot()})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.Open(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.Sessions.Dec()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Editor.Frame())
}

// postEvents accepts one event object or an array of them.
func (s *Server) postEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	raw, err := decodeEvents(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	muts, err := s.dispatch(r.Context(), sess, raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Mutations: muts, Revision: sess.Editor.Frame().Revision})
}

// dispatch decodes every event first so a bad batch applies nothing.
func (s *Server) dispatch(ctx context.Context, sess *session.Session, raw []map[string]any) ([]domain.Mutation, error) {
	events := make([]domain.Event, 0, len(raw))
	for i, m := range raw {
		ev, err := domain.DecodeEvent(m)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, ev)
	}

	muts := []domain.Mutation{}
	err := s.Sessions.WithLock(ctx, sess.ID, func(ctx context.Context) error {
		for _, ev := range events {
			if s.metrics != nil {
				s.metrics.ObserveEvent(ev)
			}
			muts = append(muts, sess.Editor.Dispatch(ctx, ev)...)
		}
		return nil
	})
	return muts, err
}

func decodeEvents(body io.Reader) ([]map[string]any, error) {
	var v any
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}, nil
	case []any:
		out := make([]map[string]any, 0, len(t))
		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: event %d is not an object", errBadRequest, i)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected an event object or an array", errBadRequest)
	}
}

// postTick advances the layout n steps (query parameter, default 1).
func (s *Server) postTick(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	n := 1
	if q := r.URL.Query().Get("n"); q != "" {
		n, err = strconv.Atoi(q)
		if err != nil || n < 1 || n > s.maxTicks {
			s.writeError(w, r, fmt.Errorf("%w: n must be between 1 and %d", errBadRequest, s.maxTicks))
			return
		}
	}
	for range n {
		sess.Editor.Tick()
	}
	writeJSON(w, http.StatusOK, sess.Editor.Frame())
}

// getGraph exports the graph as mermaid, daut or the JSON snapshot.
func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "json" {
		writeJSON(w, http.StatusOK, sess.Editor.Snapshot())
		return
	}
	text, err := sess.Editor.Export(format)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

// saveSession stores the graph in the automaton library under ?name=.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeError(w, r, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}
	if err := s.Sessions.SaveTo(r.Context(), chi.URLParam(r, "id"), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
