package recommend

import (
	"sort"

	"github.com/kailas-cloud/cinematch/internal/domain"
)

// ExcludeMode selects how the selected movie is kept out of its own neighbours.
type ExcludeMode string

const (
	// ExcludeByPosition drops the top-ranked entry of the sorted row. It assumes
	// self-similarity is the unique maximum; ties at the top or a non-reflexive
	// matrix make it drop the wrong movie.
	ExcludeByPosition ExcludeMode = "position"
	// ExcludeByIdentity drops the selected index wherever it ranks.
	ExcludeByIdentity ExcludeMode = "identity"
)

// IsValid checks if the mode is supported.
func (m ExcludeMode) IsValid() bool {
	return m == ExcludeByPosition || m == ExcludeByIdentity
}

// rankByScore returns row indexes ordered by score descending. Ties keep index order.
func rankByScore(row []float64) []int {
	order := make([]int, len(row))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return row[order[a]] > row[order[b]]
	})
	return order
}

// excludeSelf removes the selected movie from a ranked order.
func excludeSelf(order []int, self int, mode ExcludeMode) []int {
	if mode == ExcludeByIdentity {
		out := make([]int, 0, len(order))
		for _, i := range order {
			if i != self {
				out = append(out, i)
			}
		}
		return out
	}
	if len(order) == 0 {
		return order
	}
	return order[1:]
}

// neighbors ranks the row of self and returns up to k neighbours.
func neighbors(c Catalog, self, k int, mode ExcludeMode) []domain.Neighbor {
	row := c.Row(self)
	order := excludeSelf(rankByScore(row), self, mode)
	if len(order) > k {
		order = order[:k]
	}

	out := make([]domain.Neighbor, len(order))
	for n, i := range order {
		out[n] = domain.Neighbor{Index: i, Title: c.Title(i), Score: row[i]}
	}
	return out
}
