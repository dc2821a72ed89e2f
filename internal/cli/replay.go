package cli

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/internal/presentation/graph"
	"github.com/aretw0/quiver/pkg/domain"
)

// Script is a recorded editing session.
//
//	daut: |
//	  $ -> 0
//	  0 -> 1 a
//	events:
//	  - {type: pointer_down, x: 200, y: 120}
//	  - {action: final, state: 2}
//	ticks: 50
//
// Entries with "action" select the state (or source/target transition) and
// run the shortcut action; every other entry is an editor event.
type Script struct {
	Automaton string           `yaml:"automaton"`
	Daut      string           `yaml:"daut"`
	Events    []map[string]any `yaml:"events"`
	Ticks     int              `yaml:"ticks"`
}

// LoadScript reads a replay script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script %s: %w", path, err)
	}
	return &s, nil
}

// Seed returns the graph the script starts from, if it embeds one.
func (s *Script) Seed() (*domain.Snapshot, bool, error) {
	if s.Daut == "" {
		return nil, false, nil
	}
	snap, _, err := graph.ParseDaut(s.Daut)
	if err != nil {
		return nil, false, fmt.Errorf("parsing script daut: %w", err)
	}
	return snap, true, nil
}

// ReplayResult is what a replay produced.
type ReplayResult struct {
	Mutations []domain.Mutation
	Snapshot  *domain.Snapshot
}

// Replay applies the script to editor. It stops at the first entry that
// cannot be decoded, reporting its index.
func Replay(ctx context.Context, editor *quiver.Editor, s *Script) (*ReplayResult, error) {
	res := &ReplayResult{}
	for i, raw := range s.Events {
		muts, err := replayEntry(ctx, editor, raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		res.Mutations = append(res.Mutations, muts...)
	}
	for range s.Ticks {
		editor.Tick()
	}
	res.Snapshot = editor.Snapshot()
	return res, nil
}

func replayEntry(ctx context.Context, editor *quiver.Editor, raw map[string]any) ([]domain.Mutation, error) {
	action, ok := raw["action"]
	if !ok {
		return editor.DispatchRaw(ctx, raw)
	}

	switch {
	case raw["state"] != nil:
		if err := editor.Select(fmt.Sprint(raw["state"])); err != nil {
			return nil, err
		}
	case raw["source"] != nil && raw["target"] != nil:
		if err := editor.SelectTransition(fmt.Sprint(raw["source"]), fmt.Sprint(raw["target"])); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("action %v needs a state or a source and target", action)
	}
	muts := editor.Perform(ctx, domain.Action(fmt.Sprint(action)))
	editor.ClearSelection()
	return muts, nil
}
