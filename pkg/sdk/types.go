package cinematch

// Recommendation is a recommended movie with its metadata.
type Recommendation struct {
	Title  string
	Poster string
	Rating float64 // 0 when unknown
}

// Neighbor is a similar movie with its raw similarity score.
type Neighbor struct {
	Index int
	Title string
	Score float64
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"disabled"/"error"
}
