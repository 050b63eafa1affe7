// Package migrations holds the SQLite schema of the food log.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var schemaFiles embed.FS

// Status is the schema state of a database after Migrate.
type Status struct {
	Version uint
	Dirty   bool
}

// Migrate applies every pending schema change to db and reports the version
// it ended at. A database left dirty by an interrupted migration, or one
// written by a newer foodlog whose schema this binary does not know, is an
// error. db is not closed.
func Migrate(db *sql.DB) (Status, error) {
	m, err := newMigrator(db)
	if err != nil {
		return Status{}, err
	}
	// Closing m would close db.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Status{}, fmt.Errorf("applying schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return Status{}, fmt.Errorf("reading schema version: %w", err)
	}
	status := Status{Version: version, Dirty: dirty}
	if dirty {
		return status, fmt.Errorf("schema version %d is dirty", version)
	}
	return status, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing sqlite schema driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing schema migration: %w", err)
	}
	return m, nil
}
