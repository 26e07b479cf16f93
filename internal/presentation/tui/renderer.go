package tui

import (
	"fmt"

	"github.com/aretw0/sortvis/pkg/docs"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// width <= 0 keeps glamour's default word wrap.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// RenderDoc renders an algorithm documentation entry for the terminal.
func RenderDoc(e docs.Entry, width int) (string, error) {
	render, err := NewRenderer(width)
	if err != nil {
		return "", err
	}
	return render(e.Markdown())
}
