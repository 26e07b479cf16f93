// Package docs holds the reference documentation of each sorting algorithm.
// The content is static; it is not derived from the runtime behavior of the drivers.
package docs

import (
	"fmt"
	"strings"

	"github.com/aretw0/sortvis/pkg/domain"
)

// Complexity is the time complexity of an algorithm in each case.
type Complexity struct {
	Best    string `json:"best" mapstructure:"best"`
	Average string `json:"average" mapstructure:"average"`
	Worst   string `json:"worst" mapstructure:"worst"`
}

// Entry documents one algorithm.
type Entry struct {
	Algorithm   domain.Algorithm `json:"algorithm" mapstructure:"algorithm"`
	Name        string           `json:"name" mapstructure:"name"`
	Time        Complexity       `json:"time" mapstructure:"time"`
	Space       string           `json:"space" mapstructure:"space"`
	Stable      bool             `json:"stable" mapstructure:"stable"`
	InPlace     bool             `json:"in_place" mapstructure:"in_place"`
	Description string           `json:"description" mapstructure:"description"`
	Steps       []string         `json:"steps" mapstructure:"steps"`
	UseCases    []string         `json:"use_cases" mapstructure:"use_cases"`
	AvoidCases  []string         `json:"avoid_cases" mapstructure:"avoid_cases"`
	Pros        []string         `json:"pros" mapstructure:"pros"`
	Cons        []string         `json:"cons" mapstructure:"cons"`
}

// Catalog is a read-only set of entries keyed by algorithm.
type Catalog struct {
	entries map[domain.Algorithm]Entry
}

// New returns a catalog with the built-in entries. Each override replaces the entry of
// its algorithm; overrides for unsupported algorithms are ignored.
func New(overrides ...Entry) *Catalog {
	c := &Catalog{entries: builtin()}
	for _, o := range overrides {
		if _, ok := c.entries[o.Algorithm]; ok {
			c.entries[o.Algorithm] = o
		}
	}
	return c
}

// Lookup returns the built-in documentation of a.
func Lookup(a domain.Algorithm) (Entry, error) {
	return New().Lookup(a)
}

// Lookup returns the entry of a, or ErrUnknownAlgorithm.
func (c *Catalog) Lookup(a domain.Algorithm) (Entry, error) {
	e, ok := c.entries[a]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, a)
	}
	return e, nil
}

// List returns every entry in selector order.
func (c *Catalog) List() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, a := range domain.Algorithms() {
		out = append(out, c.entries[a])
	}
	return out
}

// Markdown renders the entry as a markdown document.
func (e Entry) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.Name)
	fmt.Fprintf(&b, "%s\n\n", e.Description)

	b.WriteString("| Best | Average | Worst | Space | Stable | In place |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n\n",
		e.Time.Best, e.Time.Average, e.Time.Worst, e.Space, yesNo(e.Stable), yesNo(e.InPlace))

	writeList(&b, "How it works", e.Steps, true)
	writeList(&b, "Use it when", e.UseCases, false)
	writeList(&b, "Avoid it when", e.AvoidCases, false)
	writeList(&b, "Pros", e.Pros, false)
	writeList(&b, "Cons", e.Cons, false)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeList(b *strings.Builder, title string, items []string, ordered bool) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for i, item := range items {
		if ordered {
			fmt.Fprintf(b, "%d. %s\n", i+1, item)
		} else {
			fmt.Fprintf(b, "- %s\n", item)
		}
	}
	b.WriteString("\n")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
