package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/db"
)

func newSqliteStore(t *testing.T, batch int) *SqliteRestroomStore {
	t.Helper()

	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "pitstop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(context.Background(), sqlDB, "sqlite3"))
	return NewSqliteRestroomStore(sqlDB, batch, 1)
}

func TestSqliteStore_SeedThenList(t *testing.T) {
	store := newSqliteStore(t, 500)
	ctx := context.Background()

	n, err := store.BulkInsert(ctx, mbebRestrooms())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	places, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, places, 4)
	assert.Len(t, uniqueIDs(places), 4)

	var want, got []string
	for _, p := range mbebRestrooms() {
		want = append(want, p.Name)
	}
	for _, p := range places {
		got = append(got, p.Name)
	}
	assert.ElementsMatch(t, want, got)

	for _, p := range places {
		assert.NotEmpty(t, p.ID)
		require.True(t, p.Mappable())
		assert.InDelta(t, 43.6035, *p.Lat, 1e-9)
		assert.InDelta(t, -116.2020, *p.Lon, 1e-9)
	}
}

func TestSqliteStore_EmptyList(t *testing.T) {
	places, err := newSqliteStore(t, 500).ListAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, places)
	assert.Empty(t, places)
}

func TestSqliteStore_NullCoordinates(t *testing.T) {
	store := newSqliteStore(t, 500)
	ctx := context.Background()

	_, err := store.BulkInsert(ctx, []domain.Place{domain.NewPlace("", "", nil, nil)})
	require.NoError(t, err)

	places, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, domain.DefaultName, places[0].Name)
	assert.Nil(t, places[0].Lat)
	assert.Nil(t, places[0].Lon)
}

func TestSqliteStore_DuplicatesAcrossRunsArePreserved(t *testing.T) {
	store := newSqliteStore(t, 2)
	ctx := context.Background()

	for range 2 {
		n, err := store.BulkInsert(ctx, numbered(3))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	}

	places, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, places, 6)
	assert.Len(t, uniqueIDs(places), 6)
}

func TestSqliteStore_ListWithoutSchema(t *testing.T) {
	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = NewSqliteRestroomStore(sqlDB, 500, 1).ListAll(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreRead))
}

func TestMigrate_UnknownDialect(t *testing.T) {
	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Error(t, Migrate(context.Background(), sqlDB, "mysql"))
	assert.Error(t, Migrate(context.Background(), nil, "sqlite3"))
}
