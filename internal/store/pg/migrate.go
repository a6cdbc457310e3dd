package pg

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	migrations "github.com/dropDatabas3/tenantauth/migrations/postgres"
)

// Migrator aplica las migraciones embebidas con goose.
type Migrator struct {
	provider *goose.Provider
}

// NewMigrator crea un migrator sobre db. Si fsys es nil usa las migraciones embebidas.
func NewMigrator(db *sql.DB, fsys fs.FS) (*Migrator, error) {
	if fsys == nil {
		sub, err := fs.Sub(migrations.FS, migrations.Dir)
		if err != nil {
			return nil, fmt.Errorf("pg: migrations fs: %w", err)
		}
		fsys = sub
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("pg: goose provider: %w", err)
	}
	return &Migrator{provider: p}, nil
}

// Up aplica todas las migraciones pendientes y retorna cuántas corrió.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	res, err := m.provider.Up(ctx)
	if err != nil {
		return len(res), fmt.Errorf("pg: migrate up: %w", err)
	}
	return len(res), nil
}

// Down revierte la última migración aplicada.
func (m *Migrator) Down(ctx context.Context) error {
	if _, err := m.provider.Down(ctx); err != nil {
		return fmt.Errorf("pg: migrate down: %w", err)
	}
	return nil
}

// MigrationStatus es una fila de `authctl migrate status`.
type MigrationStatus struct {
	Version int64
	Path    string
	Applied bool
}

// Status lista el estado de cada migración conocida.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	st, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg: migrate status: %w", err)
	}
	out := make([]MigrationStatus, 0, len(st))
	for _, s := range st {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}
