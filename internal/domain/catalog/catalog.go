// Package catalog holds the immutable movie catalog: the canonical title list
// and the dense similarity matrix aligned with it.
package catalog

import (
	"fmt"

	"github.com/kailas-cloud/cinematch/internal/domain"
)

// Catalog is the loaded similarity store. It is built once and never mutated,
// so it is safe for concurrent readers without locking.
type Catalog struct {
	titles []string
	index  map[string]int
	rows   [][]float64
}

// New validates and creates a Catalog.
// Titles must be non-empty and unique; similarity must be an N×N matrix
// positionally aligned with titles.
func New(titles []string, similarity [][]float64) (*Catalog, error) {
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: no titles", domain.ErrInvalidCatalog)
	}
	if len(similarity) != len(titles) {
		return nil, fmt.Errorf("%w: %d similarity rows for %d titles",
			domain.ErrInvalidCatalog, len(similarity), len(titles))
	}

	index := make(map[string]int, len(titles))
	for i, t := range titles {
		if t == "" {
			return nil, fmt.Errorf("%w: empty title at index %d", domain.ErrInvalidCatalog, i)
		}
		if prev, ok := index[t]; ok {
			return nil, fmt.Errorf("%w: %q at indexes %d and %d", domain.ErrDuplicateTitle, t, prev, i)
		}
		index[t] = i
	}

	rows := make([][]float64, len(similarity))
	for i, row := range similarity {
		if len(row) != len(titles) {
			return nil, fmt.Errorf("%w: row %d has %d scores, want %d",
				domain.ErrInvalidCatalog, i, len(row), len(titles))
		}
		rows[i] = append([]float64(nil), row...)
	}

	return &Catalog{
		titles: append([]string(nil), titles...),
		index:  index,
		rows:   rows,
	}, nil
}

// Len returns the number of movies.
func (c *Catalog) Len() int { return len(c.titles) }

// IndexOf resolves a title to its index.
func (c *Catalog) IndexOf(title string) (int, error) {
	i, ok := c.index[title]
	if !ok {
		return -1, domain.NewMovieNotFound(title)
	}
	return i, nil
}

// Title returns the title at index i. It panics on an out-of-range index.
func (c *Catalog) Title(i int) string { return c.titles[i] }

// Titles returns a copy of the canonical ordered title list.
func (c *Catalog) Titles() []string {
	return append([]string(nil), c.titles...)
}

// Row returns the similarity scores of movie i against every movie.
// The returned slice is shared and must not be modified.
func (c *Catalog) Row(i int) []float64 { return c.rows[i] }
