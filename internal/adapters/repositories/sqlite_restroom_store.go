package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rotisserie/eris"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/obs"
	"pitstop-service/internal/platform/retry"
)

// Five bound parameters per row must stay under SQLITE_MAX_VARIABLE_NUMBER (32766).
const sqliteMaxRowsPerStatement = 6000

// SQLite-backed implementation of the RestroomStore port.
type SqliteRestroomStore struct {
	DB     *sql.DB
	chunks chunkWriter
}

func NewSqliteRestroomStore(db *sql.DB, batchSize, attempts int) *SqliteRestroomStore {
	if batchSize > sqliteMaxRowsPerStatement {
		batchSize = sqliteMaxRowsPerStatement
	}

	w := newChunkWriter("sqlite", batchSize, attempts)
	w.retry.ShouldRetry = isTransientSqlite

	return &SqliteRestroomStore{DB: db, chunks: w}
}

func (s *SqliteRestroomStore) BulkInsert(ctx context.Context, places []domain.Place) (_ int, err error) {
	defer obs.Time(ctx, "sqlite.bulkInsert")(&err)

	if s.DB == nil {
		return 0, &ChunkError{Store: "sqlite", Chunk: 1, Chunks: 1, Err: errors.New("DB is nil")}
	}
	return s.chunks.write(ctx, places, s.insertChunk)
}

func (s *SqliteRestroomStore) insertChunk(ctx context.Context, chunk []domain.Place) error {
	query, args, err := insertBuilder(sq.Question, chunk).
		Options("OR IGNORE").
		ToSql()
	if err != nil {
		return eris.Wrap(err, "sqlite: build insert")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return eris.Wrap(err, "sqlite: insert chunk")
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit tx")
	}
	return nil
}

// Return all restrooms stored in the database.
func (s *SqliteRestroomStore) ListAll(ctx context.Context) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "sqlite.listAll")(&err)

	if s.DB == nil {
		return nil, readError("sqlite", "list", errors.New("DB is nil"))
	}

	query, args, err := sq.Select(restroomColumns...).
		From(restroomsTable).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, readError("sqlite", "build select", err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, readError("sqlite", "query restrooms table", err)
	}
	defer rows.Close()

	places := make([]domain.Place, 0, 64)
	for rows.Next() {
		var p domain.Place
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &lat, &lon); err != nil {
			return nil, readError("sqlite", "scan row", err)
		}
		if lat.Valid {
			p.Lat = domain.Float(lat.Float64)
		}
		if lon.Valid {
			p.Lon = domain.Float(lon.Float64)
		}
		places = append(places, p)
	}

	if err := rows.Err(); err != nil {
		return nil, readError("sqlite", "row iteration", err)
	}

	return places, nil
}

func (s *SqliteRestroomStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SqliteRestroomStore) Close() error {
	return s.DB.Close()
}

func isTransientSqlite(err error) bool {
	if retry.IsTransient(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
