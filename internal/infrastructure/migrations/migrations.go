// Package migrations applies the users schema with golang-migrate. The SQL for
// each dialect is embedded so the binary migrates without files on disk.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/zero-sllm-auth/internal/infrastructure/sqlite"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Run opens a dedicated database/sql connection for the dialect, applies all
// pending migrations and closes it. dir overrides the embedded files when set.
func Run(dialect, dsn, dir string, logger *logrus.Logger) error {
	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectPostgres:
		db, err = sql.Open("pgx", dsn)
	case DialectSQLite:
		db, err = sql.Open("sqlite", sqlite.DSN(dsn))
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return Up(db, dialect, dir, logger)
}

// Up applies pending migrations on db. migrate.ErrNoChange counts as success.
func Up(db *sql.DB, dialect, dir string, logger *logrus.Logger) error {
	driver, err := newDriver(db, dialect)
	if err != nil {
		return err
	}

	var m *migrate.Migrate
	if dir != "" {
		m, err = migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), dialect, driver)
	} else {
		src, serr := iofs.New(FS, dialect)
		if serr != nil {
			return serr
		}
		m, err = migrate.NewWithInstance("iofs", src, dialect, driver)
	}
	if err != nil {
		return err
	}

	logger.WithField("dialect", dialect).Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}

func newDriver(db *sql.DB, dialect string) (database.Driver, error) {
	switch dialect {
	case DialectPostgres:
		return pgmigrate.WithInstance(db, &pgmigrate.Config{})
	case DialectSQLite:
		return sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	}
	return nil, fmt.Errorf("unsupported dialect %q", dialect)
}
