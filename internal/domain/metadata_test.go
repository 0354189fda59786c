package domain

import "testing"

func TestParseRating(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"N/A", 0},
		{"7.5", 7.5},
		{"abc", 0},
		{"", 0},
		{" 8.1 ", 8.1},
		{"10", 10},
		{"NaN", 0},
		{"+Inf", 0},
	}
	for _, tc := range tests {
		if got := ParseRating(tc.raw); got != tc.want {
			t.Errorf("ParseRating(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestDegraded(t *testing.T) {
	m := Degraded(DefaultPlaceholderPoster)
	if m.Poster != DefaultPlaceholderPoster {
		t.Errorf("Poster = %q, want placeholder", m.Poster)
	}
	if m.RawRating != NotAvailable {
		t.Errorf("RawRating = %q, want %q", m.RawRating, NotAvailable)
	}
	if ParseRating(m.RawRating) != 0 {
		t.Error("degraded rating must normalize to 0")
	}
}

func TestMovieNotFoundError(t *testing.T) {
	err := NewMovieNotFound("Heat")
	if err.Error() != `movie not found: "Heat"` {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
