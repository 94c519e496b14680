// Package knownerrors holds the catalog of error identifiers the Gira back
// end returns, and whether a call that fails with one is worth repeating.
//
// The catalog is the source of the classification handed to the retrying
// HTTP client:
//
//	client := retryable.NewClient(ctx,
//	    retryable.WithDefaultClassification(knownerrors.Default().Classification()))
package knownerrors

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"facette.io/natsort"
	"github.com/giraplus/giraplus-go/http/retryable"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	ErrInvalidCatalog = errors.New("invalid known-errors catalog")
	ErrEmptyID        = errors.New("entry without id")
	ErrDuplicateID    = errors.New("duplicate id")
)

// Entry describes one error identifier.
type Entry struct {
	ID          string `yaml:"id"`
	Retry       bool   `yaml:"retry"`
	Description string `yaml:"description"`
}

// Catalog is an immutable set of entries keyed by id.
type Catalog struct {
	entries map[string]Entry
}

// Parse reads a YAML list of entries.
func Parse(data []byte) (*Catalog, error) {
	var list []Entry

	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	entries := make(map[string]Entry, len(list))

	for i, entry := range list {
		if entry.ID == "" {
			return nil, fmt.Errorf("%w: %w at index %d", ErrInvalidCatalog, ErrEmptyID, i)
		}

		if _, dup := entries[entry.ID]; dup {
			return nil, fmt.Errorf("%w: %w %q", ErrInvalidCatalog, ErrDuplicateID, entry.ID)
		}

		entries[entry.ID] = entry
	}

	return &Catalog{entries: entries}, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog { //nolint:gochecknoglobals
	c, err := Parse(catalogYAML)
	if err != nil {
		panic(err)
	}

	return c
})

// Default returns the embedded catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// Classification returns a fresh table for the retrying client.
func (c *Catalog) Classification() retryable.Classification {
	out := make(retryable.Classification, len(c.entries))

	for id, entry := range c.entries {
		out[id] = retryable.Policy{Retry: entry.Retry}
	}

	return out
}

// IDs returns every identifier in natural order.
func (c *Catalog) IDs() []string {
	ids := slices.Collect(maps.Keys(c.entries))
	natsort.Sort(ids)

	return ids
}

func (c *Catalog) Lookup(id string) (Entry, bool) {
	entry, ok := c.entries[id]

	return entry, ok
}

func (c *Catalog) Len() int {
	return len(c.entries)
}
