package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/domain/types"
	"github.com/dropDatabas3/tenantauth/internal/http/server"
	"github.com/dropDatabas3/tenantauth/internal/security/password"
	"github.com/dropDatabas3/tenantauth/internal/validation"
)

// newUsersCmd: alta del primer admin (la API sólo permite crear managers).
func newUsersCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administración de usuarios fuera de la API",
	}

	var first, last, email, pass string
	create := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea un usuario con rol admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if !validation.ValidEmail(email) {
				return fmt.Errorf("email inválido: %q", email)
			}

			cfg, err := g.load()
			if err != nil {
				return err
			}
			policy := password.Policy{MinLength: cfg.Security.PasswordPolicy.MinLength}
			if reasons := policy.Validate(pass); len(reasons) > 0 {
				return fmt.Errorf("password rechazado: %s", strings.Join(reasons, ", "))
			}
			h, err := password.New(password.Options{
				Algorithm:  cfg.Security.PasswordHasher,
				BcryptCost: cfg.Security.BcryptCost,
			})
			if err != nil {
				return err
			}
			hash, err := h.Hash(pass)
			if err != nil {
				return err
			}

			stores, err := server.OpenStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			u, err := stores.Users.Create(cmd.Context(), repository.CreateUserInput{
				Name:         types.JoinName(first, last),
				Email:        email,
				PasswordHash: hash,
				Role:         types.RoleAdmin,
			})
			if repository.IsConflict(err) {
				return fmt.Errorf("ya existe un usuario con email %s", email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin created id=%s\n", u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&first, "first-name", "Admin", "nombre")
	create.Flags().StringVar(&last, "last-name", "", "apellido")
	create.Flags().StringVar(&email, "email", "", "email (requerido)")
	create.Flags().StringVar(&pass, "password", "", "password (requerido)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
