package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/sortvis/pkg/docs"
	"github.com/aretw0/sortvis/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asciiOutput() *termenv.Output {
	return termenv.NewOutput(&bytes.Buffer{}, termenv.WithProfile(termenv.Ascii))
}

func testFrame() domain.Frame {
	return domain.Frame{
		Values:    []int{domain.MaxValue, domain.MaxValue / 2, 20},
		Status:    domain.StatusRunning,
		Algorithm: domain.AlgorithmQuick,
		Speed:     80,
		Highlight: domain.NewHighlight(),
		Counters:  domain.Counters{Comparisons: 3, Swaps: 1},
	}
}

func TestHeader(t *testing.T) {
	h := Header(testFrame(), 1500*time.Millisecond, 200)
	assert.Equal(t, "Quick Sort | running | speed 80 (Fast) | comparisons 3  swaps 1  writes 0 | 1.50s", h)
	assert.Len(t, []rune(Header(testFrame(), 0, 10)), 10)
}

func TestChart_Heights(t *testing.T) {
	lines := Chart(asciiOutput(), DefaultPalette, testFrame(), 6, 4)
	require.Len(t, lines, 4)
	// slot 2 -> bar width 1 + gap 1
	assert.Equal(t, "█     ", lines[0])
	assert.Equal(t, "█     ", lines[1])
	assert.Equal(t, "█ █   ", lines[2])
	assert.Equal(t, "█ █ █ ", lines[3], "every bar is at least one row high")
}

func TestChart_NarrowTerminalClipsBars(t *testing.T) {
	f := testFrame()
	f.Values = []int{100, 100, 100, 100, 100}
	lines := Chart(asciiOutput(), DefaultPalette, f, 3, 1)
	assert.Equal(t, []string{"███"}, lines)
}

func TestChart_Empty(t *testing.T) {
	f := testFrame()
	f.Values = nil
	assert.Equal(t, []string{"    ", "    "}, Chart(asciiOutput(), DefaultPalette, f, 4, 2))
	assert.Nil(t, Chart(asciiOutput(), DefaultPalette, testFrame(), 4, 0))
}

func TestBarRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	r := NewBarRenderer(&buf, WithSize(120, 8), WithProfile(termenv.Ascii), WithHelp("keys"))

	r.Render(context.Background(), testFrame())
	out := buf.String()
	assert.Contains(t, out, "Quick Sort | running")
	assert.Contains(t, out, "keys")
	assert.Contains(t, out, "█")

	buf.Reset()
	r.UpdateElapsed(2 * time.Second)
	assert.Contains(t, buf.String(), "2.00s")
	assert.NotContains(t, buf.String(), "keys", "timer ticks only redraw the header")
}

func TestBarRenderer_IgnoresTimerBeforeFirstFrame(t *testing.T) {
	var buf bytes.Buffer
	r := NewBarRenderer(&buf, WithSize(20, 8), WithProfile(termenv.Ascii))
	r.UpdateElapsed(time.Second)
	r.UpdateStats(domain.Counters{Comparisons: 1})
	assert.Empty(t, buf.String())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "sortvis")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "\n"), 9)
}

func TestRenderDoc(t *testing.T) {
	e, err := docs.Lookup(domain.AlgorithmBubble)
	require.NoError(t, err)

	out, err := RenderDoc(e, 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Bubble Sort")
}
