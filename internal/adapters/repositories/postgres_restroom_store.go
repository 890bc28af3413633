package repositories

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/obs"
	"pitstop-service/internal/platform/retry"
)

const restroomsTable = "restrooms"

var restroomColumns = []string{"id", "name", "description", "lat", "lon"}

// Pool is the subset of pgxpool.Pool the store needs.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Postgres-backed implementation of the RestroomStore port.
type PostgresRestroomStore struct {
	pool   Pool
	chunks chunkWriter
}

func NewPostgresRestroomStore(pool Pool, batchSize, attempts int) *PostgresRestroomStore {
	w := newChunkWriter("postgres", batchSize, attempts)
	w.retry.ShouldRetry = isTransientPg

	return &PostgresRestroomStore{pool: pool, chunks: w}
}

func (s *PostgresRestroomStore) BulkInsert(ctx context.Context, places []domain.Place) (_ int, err error) {
	defer obs.Time(ctx, "postgres.bulkInsert")(&err)

	return s.chunks.write(ctx, places, s.insertChunk)
}

// insertChunk writes one multi-row INSERT in its own transaction.
func (s *PostgresRestroomStore) insertChunk(ctx context.Context, chunk []domain.Place) error {
	query, args, err := insertBuilder(sq.Dollar, chunk).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return eris.Wrap(err, "postgres: build insert")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		_ = tx.Rollback(ctx)
		return eris.Wrap(err, "postgres: insert chunk")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit tx")
	}
	return nil
}

func (s *PostgresRestroomStore) ListAll(ctx context.Context) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "postgres.listAll")(&err)

	query, args, err := sq.Select(restroomColumns...).
		From(restroomsTable).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, readError("postgres", "build select", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, readError("postgres", "query restrooms", err)
	}
	defer rows.Close()

	places := make([]domain.Place, 0, 64)
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Lat, &p.Lon); err != nil {
			return nil, readError("postgres", "scan row", err)
		}
		places = append(places, p)
	}

	if err := rows.Err(); err != nil {
		return nil, readError("postgres", "row iteration", err)
	}

	return places, nil
}

func (s *PostgresRestroomStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresRestroomStore) Close() error {
	s.pool.Close()
	return nil
}

func insertBuilder(format sq.PlaceholderFormat, chunk []domain.Place) sq.InsertBuilder {
	b := sq.Insert(restroomsTable).
		Columns(restroomColumns...).
		PlaceholderFormat(format)
	for _, p := range chunk {
		b = b.Values(p.ID, p.Name, p.Description, p.Lat, p.Lon)
	}
	return b
}

func isTransientPg(err error) bool {
	if retry.IsTransient(err) || pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected, too_many_connections
		switch pgErr.Code {
		case "40001", "40P01", "53300":
			return true
		}
	}
	return false
}
