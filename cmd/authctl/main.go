// authctl: tareas operativas del auth-service (migraciones, claves, tokens).
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tenantauth/internal/config"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

type globals struct {
	configPath string
	envFile    string
}

func (g *globals) load() (*config.Config, error) {
	if g.envFile != "" {
		_ = godotenv.Load(g.envFile)
	}
	path := g.configPath
	if path == "" {
		path = envOr("CONFIG_PATH", config.DefaultPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "authctl"})
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "authctl",
		Short:         "CLI operativo del auth-service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "ruta a config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "ruta a .env (si existe, se carga)")

	root.AddCommand(
		newMigrateCmd(g),
		newKeysCmd(),
		newTokensCmd(g),
		newHashCmd(g),
		newUsersCmd(g),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
