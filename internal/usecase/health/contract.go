package health

import "context"

// CatalogSizer reports the number of loaded movies.
type CatalogSizer interface {
	Len() int
}

// MetadataChecker checks metadata provider availability.
type MetadataChecker interface {
	HealthCheck(ctx context.Context) error
}
