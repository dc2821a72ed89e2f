// Package loam stores named automata as markdown documents with
// frontmatter, using the Loam document repository.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/quiver/internal/presentation/graph"
	"github.com/aretw0/quiver/pkg/domain"
)

// Library adapts a Loam repository to ports.AutomatonLibrary.
type Library struct {
	Repo *loam.TypedRepository[AutomatonMetadata]
}

// New creates a new Loam library.
func New(repo *loam.TypedRepository[AutomatonMetadata]) *Library {
	return &Library{Repo: repo}
}

// Open initializes a Loam repository at dir without versioning.
func Open(dir string, opts ...loam.Option) (*Library, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library path: %w", err)
	}
	opts = append([]loam.Option{loam.WithVersioning(false)}, opts...)
	repo, err := loam.Init(abs, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repository at %s: %w", abs, err)
	}
	return New(loam.NewTypedRepository[AutomatonMetadata](repo)), nil
}

// Get loads the automaton stored under name.
func (l *Library) Get(ctx context.Context, name string) (*domain.Snapshot, error) {
	doc, err := l.Repo.Get(ctx, name)
	if err != nil {
		names, listErr := l.Names(ctx)
		if listErr == nil && !slices.Contains(names, name) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAutomatonNotFound, name)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	meta := doc.Data
	if len(meta.Transitions) == 0 && strings.TrimSpace(doc.Content) != "" {
		snap, _, err := graph.ParseDaut(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("automaton %s: %w", name, err)
		}
		return snap, nil
	}

	snap := &domain.Snapshot{
		States:      slices.Clone(meta.States),
		Transitions: slices.Clone(meta.Transitions),
		LastStateID: domain.NoStateID,
	}
	if snap.States == nil {
		snap.States = []domain.StateRecord{}
	}
	if snap.Transitions == nil {
		snap.Transitions = []domain.TransitionRecord{}
	}
	if meta.LastStateID != nil {
		snap.LastStateID = *meta.LastStateID
	}
	return snap, nil
}

// Put writes snap under name. The body is regenerated as daut text.
func (l *Library) Put(ctx context.Context, name string, snap *domain.Snapshot) error {
	last := snap.LastStateID
	meta := AutomatonMetadata{
		Name:        name,
		States:      snap.States,
		Transitions: snap.Transitions,
		LastStateID: &last,
	}
	err := l.Repo.Save(ctx, &loam.DocumentModel[AutomatonMetadata]{
		ID:      name,
		Content: graph.GenerateDaut(snap),
		Data:    meta,
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", name, err)
	}
	return nil
}

// Names lists the automata, preferring the name recorded in the frontmatter.
func (l *Library) Names(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: automaton '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func trimExtension(id string) string {
	if ext := filepath.Ext(id); ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
