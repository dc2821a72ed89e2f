package interaction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

// Bridge mirrors the graph into the host document.
// Flush failures are logged and swallowed: the editor keeps working offline.
type Bridge struct {
	doc    ports.Document
	logger *slog.Logger
}

// NewBridge wraps doc.
func NewBridge(doc ports.Document, logger *slog.Logger) *Bridge {
	return &Bridge{doc: doc, logger: logger}
}

// Load reads the graph currently held by the document.
// Missing keys read as empty collections.
func (b *Bridge) Load() (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	if raw, ok := b.doc.Get(domain.KeyStates); ok && raw != nil {
		if err := decodeInto(raw, &snap.States); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", domain.KeyStates, err)
		}
	}
	if raw, ok := b.doc.Get(domain.KeyTransitions); ok && raw != nil {
		if err := decodeInto(raw, &snap.Transitions); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", domain.KeyTransitions, err)
		}
	}
	if raw, ok := b.doc.Get(domain.KeyLastStateID); ok && raw != nil {
		var last int
		if err := decodeInto(raw, &last); err == nil {
			snap.LastStateID = last
		}
	}
	return snap, nil
}

// Push replaces the three keys with fresh collections and flushes.
func (b *Bridge) Push(ctx context.Context, snap *domain.Snapshot) {
	b.doc.Set(domain.KeyStates, snap.States)
	b.doc.Set(domain.KeyTransitions, snap.Transitions)
	b.doc.Set(domain.KeyLastStateID, snap.LastStateID)
	b.flush(ctx)
}

// Prime runs the throwaway flush cycle some hosts need before they observe
// the first real update: a dummy 0 -> 0 transition is pushed, then the
// original collection is restored, flushing both times.
func (b *Bridge) Prime(ctx context.Context, snap *domain.Snapshot) {
	primed := make([]domain.TransitionRecord, 0, len(snap.Transitions)+1)
	primed = append(primed, snap.Transitions...)
	primed = append(primed, domain.TransitionRecord{Source: "0", Target: "0", Label: ""})

	b.doc.Set(domain.KeyTransitions, primed)
	b.flush(ctx)

	restored := make([]domain.TransitionRecord, len(snap.Transitions))
	copy(restored, snap.Transitions)
	b.doc.Set(domain.KeyTransitions, restored)
	b.flush(ctx)
}

func (b *Bridge) flush(ctx context.Context) {
	if err := b.doc.Flush(ctx); err != nil {
		b.logger.Warn("document flush failed", "error", err)
	}
}

func decodeInto[T any](raw any, out *T) error {
	if v, ok := raw.(T); ok {
		*out = v
		return nil
	}
	return decodeValue(raw, out)
}

// decodeValue accepts typed values, raw JSON and generic decoded JSON.
func decodeValue(raw any, out any) error {
	switch v := raw.(type) {
	case json.RawMessage:
		return json.Unmarshal(v, out)
	case []byte:
		return json.Unmarshal(v, out)
	case string:
		return json.Unmarshal([]byte(v), out)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
