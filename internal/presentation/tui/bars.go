package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/sortvis/pkg/docs"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Palette maps bar roles to hex colors.
type Palette map[domain.Role]string

// DefaultPalette follows the classic visualizer colors.
var DefaultPalette = Palette{
	domain.RoleNone:      "#6366f1",
	domain.RoleComparing: "#facc15",
	domain.RoleSwapping:  "#ef4444",
	domain.RoleWriting:   "#a855f7",
	domain.RolePivot:     "#f97316",
	domain.RoleSorted:    "#22c55e",
}

// KeyHelp is printed below the chart in interactive mode.
const KeyHelp = "[s] start  [p] pause/resume  [n] new array  [r] reset  [1-5] algorithm  [+/-] speed  [</>] size  [q] quit"

const (
	defaultWidth  = 80
	defaultHeight = 24
	barGlyph      = "█"
)

// BarRenderer draws frames as a vertical bar chart on a terminal.
// It implements ports.Renderer, ports.StatsSink and ports.TimerSink.
type BarRenderer struct {
	mu      sync.Mutex
	out     *termenv.Output
	size    func() (int, int)
	palette Palette
	help    string

	last    *domain.Frame
	elapsed time.Duration
}

// BarOption configures a BarRenderer.
type BarOption func(*BarRenderer)

// WithSize fixes the drawing area instead of querying the terminal.
func WithSize(width, height int) BarOption {
	return func(r *BarRenderer) {
		r.size = func() (int, int) { return width, height }
	}
}

// WithProfile forces a color profile (termenv.Ascii disables colors).
func WithProfile(p termenv.Profile) BarOption {
	return func(r *BarRenderer) {
		r.out = termenv.NewOutput(r.out.Writer(), termenv.WithProfile(p))
	}
}

// WithHelp sets the footer line.
func WithHelp(help string) BarOption {
	return func(r *BarRenderer) {
		r.help = help
	}
}

// NewBarRenderer creates a renderer writing to w. The size follows the terminal
// attached to stdout, falling back to 80x24.
func NewBarRenderer(w io.Writer, opts ...BarOption) *BarRenderer {
	r := &BarRenderer{
		out:     termenv.NewOutput(w),
		size:    TerminalSize,
		palette: DefaultPalette,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TerminalSize returns the size of the terminal on stdout, or 80x24.
func TerminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return defaultWidth, defaultHeight
	}
	return w, h
}

// Open switches to the alternate screen and hides the cursor.
func (r *BarRenderer) Open() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out.AltScreen()
	r.out.HideCursor()
}

// Close restores the normal screen.
func (r *BarRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out.ShowCursor()
	r.out.ExitAltScreen()
}

// Render implements ports.Renderer.
func (r *BarRenderer) Render(_ context.Context, frame domain.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &frame
	r.elapsed = frame.Elapsed
	r.draw()
}

// UpdateStats implements ports.StatsSink. Counters travel with the frame, so this
// only redraws the header when no frame follows.
func (r *BarRenderer) UpdateStats(c domain.Counters) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil || r.last.Counters == c {
		return
	}
	r.last.Counters = c
	r.drawHeader()
}

// UpdateElapsed implements ports.TimerSink.
func (r *BarRenderer) UpdateElapsed(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elapsed = d
	if r.last != nil {
		r.drawHeader()
	}
}

func (r *BarRenderer) draw() {
	w, h := r.size()
	// Raw mode terminals do not turn "\n" into a carriage return, so position every row.
	for i, line := range strings.Split(Draw(r.out, r.palette, *r.last, r.elapsed, w, h, r.help), "\n") {
		r.out.MoveCursor(i+1, 1)
		fmt.Fprint(r.out, line)
	}
}

func (r *BarRenderer) drawHeader() {
	w, _ := r.size()
	r.out.MoveCursor(1, 1)
	r.out.ClearLine()
	fmt.Fprint(r.out, Header(*r.last, r.elapsed, w))
}

// Header is the one-line status summary of a frame.
func Header(f domain.Frame, elapsed time.Duration, width int) string {
	name := string(f.Algorithm)
	if e, err := docs.Lookup(f.Algorithm); err == nil {
		name = e.Name
	}
	line := fmt.Sprintf("%s | %s | speed %d (%s) | comparisons %d  swaps %d  writes %d | %.2fs",
		name, f.Status, f.Speed, domain.SpeedLabel(f.Speed),
		f.Counters.Comparisons, f.Counters.Swaps, f.Counters.Writes,
		elapsed.Seconds(),
	)
	return truncate(line, width)
}

// Draw renders a full screen: header, chart and optional footer, each line cleared
// to the terminal width. p only provides colors.
func Draw(p *termenv.Output, palette Palette, f domain.Frame, elapsed time.Duration, width, height int, help string) string {
	var b strings.Builder
	b.WriteString(pad(Header(f, elapsed, width), width))
	b.WriteString("\n")

	rows := height - 2
	if help != "" {
		rows--
	}
	for _, line := range Chart(p, palette, f, width, rows) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if help != "" {
		b.WriteString(pad(truncate(help, width), width))
	}
	return b.String()
}

// Chart returns rows lines of bars, top to bottom. Bar heights are proportional to
// domain.MaxValue; every bar is at least one row high.
func Chart(p *termenv.Output, palette Palette, f domain.Frame, width, rows int) []string {
	if rows <= 0 {
		return nil
	}
	n := len(f.Values)
	lines := make([]string, rows)
	if n == 0 {
		for i := range lines {
			lines[i] = strings.Repeat(" ", width)
		}
		return lines
	}

	slot := max(1, width/n)
	barW, gap := slot, 0
	if slot >= 2 {
		barW, gap = min(slot-1, 3), 1
	}

	heights := make([]int, n)
	for i, v := range f.Values {
		heights[i] = max(1, min(rows, v*rows/domain.MaxValue))
	}

	roles := f.Roles()
	styles := make([]string, n)
	for i, role := range roles {
		styles[i] = p.String(strings.Repeat(barGlyph, barW)).Foreground(p.Color(palette[role])).String()
	}
	blank := strings.Repeat(" ", barW)
	spacer := strings.Repeat(" ", gap)

	for row := range rows {
		level := rows - row
		var b strings.Builder
		used := 0
		for i := 0; i < n && used+barW <= width; i++ {
			if heights[i] >= level {
				b.WriteString(styles[i])
			} else {
				b.WriteString(blank)
			}
			used += barW
			if gap > 0 && used+gap <= width {
				b.WriteString(spacer)
				used += gap
			}
		}
		if used < width {
			b.WriteString(strings.Repeat(" ", width-used))
		}
		lines[row] = b.String()
	}
	return lines
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width > 0 && len(r) > width {
		return string(r[:width])
	}
	return s
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
