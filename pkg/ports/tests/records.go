package tests

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/quiver/pkg/domain"
)

// StateRecords normalizes a document value into state records.
// Adapters may hand back typed slices or decoded JSON.
func StateRecords(v any) ([]domain.StateRecord, error) {
	if recs, ok := v.([]domain.StateRecord); ok {
		return recs, nil
	}
	var out []domain.StateRecord
	return out, reencode(v, &out)
}

// TransitionRecords normalizes a document value into transition records.
func TransitionRecords(v any) ([]domain.TransitionRecord, error) {
	if recs, ok := v.([]domain.TransitionRecord); ok {
		return recs, nil
	}
	var out []domain.TransitionRecord
	return out, reencode(v, &out)
}

func reencode(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	return json.Unmarshal(raw, out)
}
