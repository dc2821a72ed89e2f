package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/quiver/pkg/domain"
)

// Export formats.
const (
	FormatMermaid = "mermaid"
	FormatDaut    = "daut"
)

// GraphOverlay contains interaction state to visualize on the graph.
type GraphOverlay struct {
	SelectedState string
	// SelectedTransition is "source->target".
	SelectedTransition string
}

// GenerateMermaid produces a Mermaid state diagram from a snapshot.
// Marker pseudo-states are drawn as [*]:
// - Initial arrow: [*] --> sN
// - Final arrow:   sN --> [*]
// - Ordinary:      sN --> sM : label
func GenerateMermaid(snap *domain.Snapshot) string {
	return GenerateMermaidWithOverlay(snap, nil)
}

// GenerateMermaidWithOverlay is GenerateMermaid plus selection styles.
func GenerateMermaidWithOverlay(snap *domain.Snapshot, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	if snap == nil {
		return sb.String()
	}

	for _, s := range snap.States {
		id := string(s.ID)
		if role, _ := domain.ParseStateID(id); role != domain.RoleOrdinary {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s : %s\n", sanitizeMermaidID(id), id))
	}

	for _, t := range snap.Transitions {
		from := mermaidEndpoint(string(t.Source))
		to := mermaidEndpoint(string(t.Target))
		label := strings.TrimSpace(t.Label)
		if label == "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
			continue
		}
		// Mermaid ends the label at a newline; colons are fine.
		label = strings.ReplaceAll(label, "\n", " ")
		sb.WriteString(fmt.Sprintf("    %s --> %s : %s\n", from, to, label))
	}

	if overlay != nil && overlay.SelectedState != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000\n")
		sb.WriteString(fmt.Sprintf("    class %s selected\n", sanitizeMermaidID(overlay.SelectedState)))
	}

	return sb.String()
}

func mermaidEndpoint(id string) string {
	if id == "" {
		return "[*]"
	}
	if role, _ := domain.ParseStateID(id); role != domain.RoleOrdinary {
		return "[*]"
	}
	return sanitizeMermaidID(id)
}

// sanitizeMermaidID prefixes ids so numeric ids are valid Mermaid identifiers.
func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return "s" + s
}
