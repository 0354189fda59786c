package domain

import (
	"math"
	"strconv"
	"strings"
)

// NotAvailable is the metadata provider marker for an absent value.
const NotAvailable = "N/A"

// DefaultPlaceholderPoster is shown when no poster can be resolved.
const DefaultPlaceholderPoster = "https://via.placeholder.com/500x750?text=No+Image"

// Metadata is the per-request enrichment fetched for a single title.
// RawRating is either a numeric string or NotAvailable.
type Metadata struct {
	Poster    string
	RawRating string
}

// Degraded returns the metadata used whenever the provider cannot answer.
func Degraded(placeholder string) Metadata {
	return Metadata{Poster: placeholder, RawRating: NotAvailable}
}

// ParseRating converts a raw provider rating into a number.
// NotAvailable, empty, non-numeric and non-finite values all map to 0.
func ParseRating(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == NotAvailable {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
