package loam

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/sortvis/pkg/docs"
	"github.com/aretw0/sortvis/pkg/domain"
)

// DocLoader reads algorithm documentation overrides from a Loam repository:
// one markdown file per algorithm, frontmatter for the structured fields and the body
// as the description.
type DocLoader struct {
	Repo *loam.TypedRepository[DocMetadata]
}

// New creates a DocLoader over an existing typed repository.
func New(repo *loam.TypedRepository[DocMetadata]) *DocLoader {
	return &DocLoader{Repo: repo}
}

// Open initializes a read-only, strict Loam repository at dir.
func Open(dir string) (*DocLoader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across adapters. ReadOnly avoids
	// Loam's dev-mode sandbox: overrides are never written back.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[DocMetadata](repo)), nil
}

// Load returns one complete entry per override file, starting from the built-in text.
// Files whose name is not an algorithm and that do not name one are skipped.
func (l *DocLoader) Load(ctx context.Context) ([]docs.Entry, error) {
	list, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[domain.Algorithm]string)
	entries := make([]docs.Entry, 0, len(list))
	for _, doc := range list {
		key := doc.Data.Algorithm
		if key == "" {
			key = trimExtension(filepath.Base(doc.ID))
		}
		alg, err := domain.ParseAlgorithm(key)
		if err != nil {
			if doc.Data.Algorithm == "" && errors.Is(err, domain.ErrUnknownAlgorithm) {
				continue
			}
			return nil, fmt.Errorf("doc %s: %w", doc.ID, err)
		}

		if existing, ok := seen[alg]; ok {
			return nil, fmt.Errorf("collision detected: algorithm '%s' is documented in both '%s' and '%s'", alg, existing, doc.ID)
		}
		seen[alg] = doc.ID

		// List only carries metadata; the body comes from Get.
		full, err := l.Repo.Get(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", doc.ID, err)
		}

		base, err := docs.Lookup(alg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, apply(base, full.Data, full.Content))
	}
	return entries, nil
}

// Catalog loads the overrides and returns a catalog with them applied.
func (l *DocLoader) Catalog(ctx context.Context) (*docs.Catalog, error) {
	entries, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return docs.New(entries...), nil
}

func apply(e docs.Entry, meta DocMetadata, content string) docs.Entry {
	setString(&e.Name, meta.Name)
	setString(&e.Time.Best, meta.TimeBest)
	setString(&e.Time.Average, meta.TimeAverage)
	setString(&e.Time.Worst, meta.TimeWorst)
	setString(&e.Space, meta.Space)
	setString(&e.Description, strings.TrimSpace(content))
	if meta.Stable != nil {
		e.Stable = *meta.Stable
	}
	if meta.InPlace != nil {
		e.InPlace = *meta.InPlace
	}
	setList(&e.Steps, meta.Steps)
	setList(&e.UseCases, meta.UseCases)
	setList(&e.AvoidCases, meta.AvoidCases)
	setList(&e.Pros, meta.Pros)
	setList(&e.Cons, meta.Cons)
	return e
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setList(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = v
	}
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
