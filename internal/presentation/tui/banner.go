package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the sortvis banner: ascending bars in a warm-to-cool gradient.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	colors := []string{"#22c55e", "#84cc16", "#facc15", "#f97316", "#ef4444", "#a855f7", "#6366f1"}

	fmt.Fprintln(out)
	for row := len(colors); row > 0; row-- {
		var b strings.Builder
		b.WriteString("  ")
		for i, c := range colors {
			cell := "  "
			if i+1 >= row {
				cell = out.String("█ ").Foreground(out.Color(c)).String()
			}
			b.WriteString(cell)
		}
		fmt.Fprintln(out, b.String())
	}
	title := out.String("  sortvis").Bold().String()
	if version = strings.TrimSpace(version); version != "" {
		title += out.String(" v" + version).Faint().String()
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out)
}
