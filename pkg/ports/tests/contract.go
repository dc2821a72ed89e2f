package tests

import (
	"context"
	"testing"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

// DocumentContractTest is a reusable test suite that verifies if an adapter complies with ports.Document.
// Values are compared after a Flush, as the editor's bridge writes them.
func DocumentContractTest(t *testing.T, doc ports.Document) {
	t.Helper()
	ctx := context.Background()

	// 1. Missing keys
	t.Run("Get_Missing", func(t *testing.T) {
		if _, ok := doc.Get("no-such-key"); ok {
			t.Error("expected missing key to report ok=false")
		}
	})

	// 2. Set then Get (Flush publishes)
	t.Run("Set_Flush_Get", func(t *testing.T) {
		states := []domain.StateRecord{{ID: "0"}, {ID: "1"}}
		doc.Set(domain.KeyStates, states)
		doc.Set(domain.KeyLastStateID, 1)
		if err := doc.Flush(ctx); err != nil {
			t.Fatalf("unexpected error flushing: %v", err)
		}

		got, ok := doc.Get(domain.KeyStates)
		if !ok {
			t.Fatal("states missing after flush")
		}
		records, err := StateRecords(got)
		if err != nil {
			t.Fatalf("states have unexpected shape: %v", err)
		}
		if len(records) != 2 || records[1].ID != "1" {
			t.Errorf("states mismatch: got %+v", records)
		}
	})

	// 3. Replace
	t.Run("Set_Replaces", func(t *testing.T) {
		doc.Set(domain.KeyTransitions, []domain.TransitionRecord{{Source: "0", Target: "1", Label: "a"}})
		doc.Set(domain.KeyTransitions, []domain.TransitionRecord{})
		if err := doc.Flush(ctx); err != nil {
			t.Fatalf("unexpected error flushing: %v", err)
		}
		got, ok := doc.Get(domain.KeyTransitions)
		if !ok {
			t.Fatal("transitions missing after flush")
		}
		records, err := TransitionRecords(got)
		if err != nil {
			t.Fatalf("transitions have unexpected shape: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected replaced collection to be empty, got %+v", records)
		}
	})
}
