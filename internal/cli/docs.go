package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/sortvis/internal/presentation/tui"
	"github.com/aretw0/sortvis/pkg/domain"
)

// DocsOptions configures the docs command.
type DocsOptions struct {
	Algorithm string
	DocsDir   string
	// Raw prints the markdown source instead of rendering it.
	Raw   bool
	Width int
}

// ShowDocs writes the documentation of one algorithm to w.
func ShowDocs(ctx context.Context, w io.Writer, opts DocsOptions) error {
	alg, err := domain.ParseAlgorithm(opts.Algorithm)
	if err != nil {
		return err
	}
	catalog, err := LoadDocs(ctx, opts.DocsDir)
	if err != nil {
		return err
	}
	entry, err := catalog.Lookup(alg)
	if err != nil {
		return err
	}

	if opts.Raw {
		_, err := io.WriteString(w, entry.Markdown())
		return err
	}
	out, err := tui.RenderDoc(entry, opts.Width)
	if err != nil {
		return fmt.Errorf("failed to render docs: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
