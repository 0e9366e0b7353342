package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/stokaro/ptah/dbschema"
	"github.com/stokaro/ptah/migration/migrator"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the embedded schema migrations
// (NNNNNNNNNN_name.up.sql / .down.sql).
func Migrations() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}

// MigrationStatus is the schema version report printed by `migrate status`.
type MigrationStatus = migrator.MigrationStatus

// Migrator applies the embedded migrations over its own connection,
// separate from the request pool.
type Migrator struct {
	conn *dbschema.DatabaseConnection
	m    *migrator.Migrator
}

// OpenMigrator connects to databaseURL and loads the embedded migrations.
func OpenMigrator(databaseURL string) (*Migrator, error) {
	fsys, err := Migrations()
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	conn, err := dbschema.ConnectToDatabase(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect for migrations: %w", err)
	}

	m, err := migrator.NewFSMigrator(conn, fsys)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("scan migrations: %w", err)
	}
	return &Migrator{conn: conn, m: m}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	return m.m.MigrateUp(ctx)
}

// Down reverts the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.m.MigrateDown(ctx)
}

func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	return m.m.GetMigrationStatus(ctx)
}

func (m *Migrator) Close() {
	m.conn.Close()
}

// MigrateUp opens a migrator, applies pending migrations and closes it.
func MigrateUp(ctx context.Context, databaseURL string) error {
	m, err := OpenMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up(ctx)
}
