package catalog

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/cinematch/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	c, err := New(
		[]string{"Avatar", "Titanic"},
		[][]float64{{1, 0.2}, {0.2, 1}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.Title(1) != "Titanic" {
		t.Errorf("Title(1) = %q, want %q", c.Title(1), "Titanic")
	}
	if got := c.Row(0)[1]; got != 0.2 {
		t.Errorf("Row(0)[1] = %v, want 0.2", got)
	}
}

func TestNew_Empty(t *testing.T) {
	_, err := New(nil, nil)
	if !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNew_RowCountMismatch(t *testing.T) {
	_, err := New([]string{"A", "B"}, [][]float64{{1, 0}})
	if !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNew_RowLengthMismatch(t *testing.T) {
	_, err := New([]string{"A", "B"}, [][]float64{{1, 0}, {1}})
	if !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNew_EmptyTitle(t *testing.T) {
	_, err := New([]string{"A", ""}, [][]float64{{1, 0}, {0, 1}})
	if !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNew_DuplicateTitle(t *testing.T) {
	_, err := New([]string{"A", "A"}, [][]float64{{1, 0}, {0, 1}})
	if !errors.Is(err, domain.ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
}

func TestIndexOf(t *testing.T) {
	c, err := New([]string{"A", "B", "C"}, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	i, err := c.IndexOf("C")
	if err != nil {
		t.Fatalf("IndexOf(C): %v", err)
	}
	if i != 2 {
		t.Errorf("IndexOf(C) = %d, want 2", i)
	}

	_, err = c.IndexOf("Z")
	if !errors.Is(err, domain.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
	var nf *domain.MovieNotFoundError
	if !errors.As(err, &nf) || nf.Title != "Z" {
		t.Errorf("expected MovieNotFoundError for %q, got %v", "Z", err)
	}
}

func TestNew_CopiesInput(t *testing.T) {
	titles := []string{"A", "B"}
	rows := [][]float64{{1, 0.5}, {0.5, 1}}
	c, err := New(titles, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	titles[0] = "mutated"
	rows[0][1] = 99

	if c.Title(0) != "A" {
		t.Errorf("catalog title changed after input mutation: %q", c.Title(0))
	}
	if c.Row(0)[1] != 0.5 {
		t.Errorf("catalog row changed after input mutation: %v", c.Row(0)[1])
	}

	out := c.Titles()
	out[1] = "mutated"
	if c.Title(1) != "B" {
		t.Errorf("Titles() leaked internal slice")
	}
}
