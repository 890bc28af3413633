package ports

import (
	"context"
	"pitstop-service/internal/domain"
)

// Port: durable collection of Place records.
type RestroomStore interface {
	// Assign fresh ids and persist places in chunks bounded by the backend's
	// batch limit. Returns how many places were committed before the first
	// failing chunk.
	BulkInsert(ctx context.Context, places []domain.Place) (int, error)
	// Return every stored place. Order is unspecified.
	ListAll(ctx context.Context) ([]domain.Place, error)
}

// Optional extension for stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
