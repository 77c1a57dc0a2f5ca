package app

import (
	"embed"
	"errors"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateUp applies all pending embedded migrations.
func MigrateUp(databaseURL string, log *slog.Logger) error {
	return runMigrations(databaseURL, log, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back a single migration step.
func MigrateDown(databaseURL string, log *slog.Logger) error {
	return runMigrations(databaseURL, log, func(m *migrate.Migrate) error { return m.Steps(-1) })
}

func runMigrations(databaseURL string, log *slog.Logger, fn func(*migrate.Migrate) error) error {
	if strings.TrimSpace(databaseURL) == "" {
		return errors.New("app: GRAVITY_DATABASE_URL is required for migrations")
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Error("migrate.close.source.fail", "err", srcErr)
		}
		if dbErr != nil {
			log.Error("migrate.close.db.fail", "err", dbErr)
		}
	}()

	if err := fn(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("migrate.no_change")
			return nil
		}
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	log.Info("migrate.done", "version", version, "dirty", dirty)
	return nil
}

// migrateURL rewrites a postgres DSN to the scheme the migrate pgx/v5
// driver registers.
func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}
