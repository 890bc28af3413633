package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/retry"
)

func fastWriter(batch, attempts int) chunkWriter {
	w := newChunkWriter("test", batch, attempts)
	w.retry.InitialBackoff = time.Millisecond
	w.retry.MaxBackoff = time.Millisecond
	return w
}

func TestChunkWriter_SplitsIntoBatches(t *testing.T) {
	var sizes []int
	var seen []domain.Place

	n, err := fastWriter(2, 1).write(context.Background(), numbered(5), func(_ context.Context, chunk []domain.Place) error {
		sizes = append(sizes, len(chunk))
		seen = append(seen, chunk...)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Len(t, uniqueIDs(seen), 5)
	for _, p := range seen {
		assert.NotEmpty(t, p.ID)
	}
}

func TestChunkWriter_DefaultBatchSize(t *testing.T) {
	calls := 0
	n, err := newChunkWriter("test", 0, 1).write(context.Background(), numbered(1001), func(_ context.Context, chunk []domain.Place) error {
		calls++
		assert.LessOrEqual(t, len(chunk), DefaultBatchSize)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1001, n)
	assert.Equal(t, 3, calls)
}

func TestChunkWriter_Empty(t *testing.T) {
	n, err := fastWriter(2, 1).write(context.Background(), nil, func(context.Context, []domain.Place) error {
		t.Fatal("insert must not be called for an empty batch")
		return nil
	})

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestChunkWriter_StopsAtFailedChunk(t *testing.T) {
	calls := 0
	n, err := fastWriter(2, 3).write(context.Background(), numbered(7), func(_ context.Context, chunk []domain.Place) error {
		calls++
		if calls == 2 {
			return errors.New("constraint violation")
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, calls, "non-transient errors are not retried and later chunks are skipped")
	assert.True(t, errors.Is(err, domain.ErrStoreWrite))

	var ce *ChunkError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 2, ce.Chunk)
	assert.Equal(t, 4, ce.Chunks)
	assert.Equal(t, 2, ce.Committed)
}

func TestChunkWriter_RetriesTransientWithSameIDs(t *testing.T) {
	var attempts [][]string
	n, err := fastWriter(10, 3).write(context.Background(), numbered(3), func(_ context.Context, chunk []domain.Place) error {
		ids := make([]string, len(chunk))
		for i, p := range chunk {
			ids[i] = p.ID
		}
		attempts = append(attempts, ids)
		if len(attempts) == 1 {
			return retry.Transient(errors.New("connection reset"), 0)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, attempts, 2)
	assert.Equal(t, attempts[0], attempts[1])
}

func TestWithIDs_DoesNotMutateInput(t *testing.T) {
	in := numbered(2)
	out := withIDs(in)

	assert.Empty(t, in[0].ID)
	assert.NotEmpty(t, out[0].ID)
	assert.NotEqual(t, out[0].ID, out[1].ID)
}
