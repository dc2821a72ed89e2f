package loam

import "github.com/aretw0/quiver/pkg/domain"

// AutomatonMetadata is the frontmatter of an automaton document.
// The markdown body holds the same automaton in daut text; it is used
// when the frontmatter carries no transitions (hand-written files).
type AutomatonMetadata struct {
	Name        string                    `json:"name" yaml:"name" mapstructure:"name"`
	States      []domain.StateRecord      `json:"states,omitempty" yaml:"states,omitempty" mapstructure:"states"`
	Transitions []domain.TransitionRecord `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`
	LastStateID *int                      `json:"last_state_id,omitempty" yaml:"last_state_id,omitempty" mapstructure:"last_state_id"`
}
