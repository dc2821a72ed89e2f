package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/quiver/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Summary describes a snapshot as markdown: counts, initial and final
// states, and a transition table.
func Summary(name string, snap *domain.Snapshot) string {
	var sb strings.Builder
	if name == "" {
		name = "automaton"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", name))
	if snap == nil {
		sb.WriteString("_empty_\n")
		return sb.String()
	}

	var ordinary, initial, final []string
	for _, s := range snap.States {
		role, owner := domain.ParseStateID(string(s.ID))
		switch role {
		case domain.RoleInitialMarker:
			initial = append(initial, owner)
		case domain.RoleFinalMarker:
			final = append(final, owner)
		default:
			ordinary = append(ordinary, string(s.ID))
		}
	}

	sb.WriteString(fmt.Sprintf("- **States:** %d (%s)\n", len(ordinary), list(ordinary)))
	sb.WriteString(fmt.Sprintf("- **Initial:** %s\n", list(initial)))
	sb.WriteString(fmt.Sprintf("- **Final:** %s\n", list(final)))
	sb.WriteString(fmt.Sprintf("- **Last state id:** %d\n\n", snap.LastStateID))

	sb.WriteString("| Source | Target | Label |\n|---|---|---|\n")
	for _, t := range snap.Transitions {
		if role, _ := domain.ParseStateID(string(t.Source)); role != domain.RoleOrdinary {
			continue
		}
		if role, _ := domain.ParseStateID(string(t.Target)); role != domain.RoleOrdinary {
			continue
		}
		label := strings.ReplaceAll(t.Label, "|", "\\|")
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", t.Source, t.Target, label))
	}
	return sb.String()
}

func list(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
