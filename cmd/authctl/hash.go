package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tenantauth/internal/security/password"
)

func newHashCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <password>",
		Short: "Hashea un password con el algoritmo configurado",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			h, err := password.New(password.Options{
				Algorithm:  cfg.Security.PasswordHasher,
				BcryptCost: cfg.Security.BcryptCost,
			})
			if err != nil {
				return err
			}
			out, err := h.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
