package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tenantauth/internal/store/pg"
)

func newMigrateCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de PostgreSQL (goose, embebidas)",
	}

	withMigrator := func(fn func(ctx context.Context, m *pg.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := pg.Open(ctx, pg.Config{DSN: cfg.Storage.DSN, ConnectTimeout: cfg.Storage.Postgres.ConnectTimeout})
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := pg.NewMigrator(db.SQL, nil)
			if err != nil {
				return err
			}
			return fn(ctx, m)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Aplica las migraciones pendientes",
			RunE: withMigrator(func(ctx context.Context, m *pg.Migrator) error {
				n, err := m.Up(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("applied %d migration(s)\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revierte la última migración",
			RunE: withMigrator(func(ctx context.Context, m *pg.Migrator) error {
				if err := m.Down(ctx); err != nil {
					return err
				}
				fmt.Println("rolled back 1 migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Lista migraciones y su estado",
			RunE: withMigrator(func(ctx context.Context, m *pg.Migrator) error {
				list, err := m.Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range list {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Printf("%05d  %-8s  %s\n", s.Version, state, s.Path)
				}
				return nil
			}),
		},
	)
	return cmd
}
