package domain

// Neighbor is a movie index paired with its similarity to a reference movie.
type Neighbor struct {
	Index int
	Title string
	Score float64
}

// Recommendation is a single enriched result shown to the user.
type Recommendation struct {
	Title  string
	Poster string
	Rating float64
}
