package repositories

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFS embed.FS

// Migrate applies pending schema migrations for the given SQL dialect
// ("postgres" or "sqlite3").
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	if db == nil {
		return eris.New("migrate: DB is nil")
	}

	var d goose.Dialect
	switch dialect {
	case "postgres":
		d = goose.DialectPostgres
	case "sqlite3":
		d = goose.DialectSQLite3
	default:
		return eris.Errorf("migrate: unsupported dialect %q", dialect)
	}

	fsys, err := fs.Sub(migrationFS, "migrations/"+dialect)
	if err != nil {
		return eris.Wrapf(err, "migrate: open %s migrations", dialect)
	}

	provider, err := goose.NewProvider(d, db, fsys)
	if err != nil {
		return eris.Wrap(err, "migrate: create provider")
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return eris.Wrap(err, "migrate: apply")
	}

	for _, r := range results {
		zap.L().Info("migration applied",
			zap.String("component", "repositories.migrate"),
			zap.String("dialect", dialect),
			zap.Int64("version", r.Source.Version),
			zap.Duration("duration", r.Duration),
		)
	}
	return nil
}
