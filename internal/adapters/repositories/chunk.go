package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/retry"
)

// DefaultBatchSize is the largest chunk written in one backend call.
const DefaultBatchSize = 500

// ChunkError reports the chunk that stopped a bulk insert. Chunks before it
// stay committed.
type ChunkError struct {
	Store     string
	Chunk     int
	Chunks    int
	Committed int
	Err       error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s: bulk insert chunk %d/%d (%d committed): %v",
		e.Store, e.Chunk, e.Chunks, e.Committed, e.Err)
}

func (e *ChunkError) Unwrap() []error { return []error{domain.ErrStoreWrite, e.Err} }

// ReadError reports a failed listing.
type ReadError struct {
	Store string
	Op    string
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %s: %v: %v", e.Store, e.Op, domain.ErrStoreRead, e.Err)
}

func (e *ReadError) Unwrap() []error { return []error{domain.ErrStoreRead, e.Err} }

func readError(store, op string, err error) error {
	return &ReadError{Store: store, Op: op, Err: err}
}

// chunkWriter is the shared BulkInsert driver. Each backend supplies only the
// single-chunk write.
type chunkWriter struct {
	store     string
	batchSize int
	retry     retry.Config
}

func newChunkWriter(store string, batchSize, attempts int) chunkWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	rc := retry.Default()
	if attempts > 0 {
		rc.MaxAttempts = attempts
	}
	rc.OnRetry = retry.Logger("repositories."+store, "bulk_insert")

	return chunkWriter{store: store, batchSize: batchSize, retry: rc}
}

// withIDs returns a copy of places carrying fresh ids. Ids are fixed before
// the first attempt so a retried chunk writes the same keys.
func withIDs(places []domain.Place) []domain.Place {
	out := make([]domain.Place, len(places))
	for i, p := range places {
		p.ID = uuid.NewString()
		out[i] = p
	}
	return out
}

func chunkCount(n, size int) int {
	return (n + size - 1) / size
}

func (w chunkWriter) write(
	ctx context.Context,
	places []domain.Place,
	insert func(ctx context.Context, chunk []domain.Place) error,
) (int, error) {
	if len(places) == 0 {
		return 0, nil
	}

	log := zap.L().With(zap.String("component", "repositories."+w.store))
	rows := withIDs(places)
	chunks := chunkCount(len(rows), w.batchSize)

	committed := 0
	for i := 0; i < chunks; i++ {
		start := i * w.batchSize
		end := min(start+w.batchSize, len(rows))
		chunk := rows[start:end]

		if err := retry.Do(ctx, w.retry, func(ctx context.Context) error {
			return insert(ctx, chunk)
		}); err != nil {
			log.Error("bulk insert chunk failed",
				zap.Int("chunk", i+1),
				zap.Int("chunks", chunks),
				zap.Int("committed", committed),
				zap.Error(err),
			)
			return committed, &ChunkError{
				Store:     w.store,
				Chunk:     i + 1,
				Chunks:    chunks,
				Committed: committed,
				Err:       err,
			}
		}

		committed += len(chunk)
		log.Debug("bulk insert chunk committed", zap.Int("chunk", i+1), zap.Int("size", len(chunk)))
	}

	return committed, nil
}
