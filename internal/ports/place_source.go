package ports

import (
	"context"
	"pitstop-service/internal/domain"
)

// Contract for turning one query target into normalized places.
type PlaceSource interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Search follows the source's pagination for target. It never returns
	// a bare error: failures are carried in SearchResult.Err next to any
	// places collected before the failure.
	Search(ctx context.Context, target domain.QueryTarget) domain.SearchResult
}
