package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tenantauth/internal/http/server"
)

func newTokensCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Mantenimiento de refresh tokens",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Borra registros de refresh tokens vencidos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			stores, err := server.OpenStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			n, err := stores.Tokens.DeleteExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d expired refresh token(s)\n", n)
			return nil
		},
	})
	return cmd
}
