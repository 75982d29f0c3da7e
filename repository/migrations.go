package repository

import (
	"context"
	"embed"
	"io/fs"
	"path"

	goerrors "github.com/goliatone/go-errors"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

const migrationsRoot = "data/sql/migrations"

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the migration files for the named dialect
// directory, "sqlite" or "postgres".
func GetMigrationsFS(dialectDir string) (fs.FS, error) {
	sub, err := fs.Sub(migrationsFS, path.Join(migrationsRoot, dialectDir))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open migrations").
			WithMetadata(map[string]any{"dialect": dialectDir})
	}
	return sub, nil
}

// Migrate applies the embedded migrations for the dialect of db and returns
// the group that ran. Applied migrations are tracked in bun_migrations so
// repeated calls are no-ops.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrations, err := dialectMigrations(db)
	if err != nil {
		return nil, err
	}

	if err := migrations.Migrate(ctx, db); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to migrate user store")
	}

	report := migrations.Report()
	if report == nil {
		report = new(migrate.MigrationGroup)
	}
	return report, nil
}

// Rollback undoes every applied migration group
func Rollback(ctx context.Context, db *bun.DB) error {
	migrations, err := dialectMigrations(db)
	if err != nil {
		return err
	}

	if err := migrations.RollbackAll(ctx, db); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to roll back user store")
	}
	return nil
}

func dialectMigrations(db *bun.DB) (*persistence.Migrations, error) {
	var dir string
	switch db.Dialect().Name() {
	case dialect.SQLite:
		dir = DriverSQLite
	case dialect.PG:
		dir = DriverPostgres
	default:
		return nil, goerrors.New("no migrations for dialect "+db.Dialect().Name().String(), goerrors.CategoryValidation)
	}

	files, err := GetMigrationsFS(dir)
	if err != nil {
		return nil, err
	}

	return new(persistence.Migrations).RegisterSQLMigrations(files), nil
}
