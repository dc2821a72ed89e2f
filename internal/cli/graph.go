package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/quiver/internal/presentation/graph"
	"github.com/aretw0/quiver/internal/presentation/tui"
	"github.com/aretw0/quiver/pkg/domain"
)

// Output formats of RenderGraph.
const (
	FormatJSON    = "json"
	FormatSummary = "summary"
)

// RenderGraph writes snap in one of json, mermaid, daut or summary.
// The summary is markdown rendered for the terminal.
func RenderGraph(w io.Writer, name string, snap *domain.Snapshot, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case graph.FormatMermaid, "":
		_, err := io.WriteString(w, graph.GenerateMermaid(snap))
		return err
	case graph.FormatDaut:
		_, err := io.WriteString(w, graph.GenerateDautWithContext(snap, name))
		return err
	case FormatSummary:
		out, err := tui.NewRenderer()(tui.Summary(name, snap))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unsupported format %q (want json, mermaid, daut or summary)", format)
	}
}
