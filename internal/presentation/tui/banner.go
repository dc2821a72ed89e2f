package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the quiver ASCII art banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Sky)
	lines := []struct{ text, color string }{
		{"   __ _ _   _ (_)_   _____ _ __ ", "#2dd4bf"},
		{"  / _` | | | || \\ \\ / / _ \\ '__|", "#22d3ee"},
		{" | (_| | |_| || |\\ V /  __/ |   ", "#38bdf8"},
		{"  \\__, |\\__,_||_| \\_/ \\___|_|   ", "#60a5fa"},
		{"     |_|                        ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
