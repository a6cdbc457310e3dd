package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/tenantauth/internal/config"
	"github.com/dropDatabas3/tenantauth/internal/http/server"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", "", "ruta a .env (default: .env.$APP_ENV y .env)")
	)
	flag.Parse()

	loadDotenv(*flagEnvFile)

	path := *flagConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = config.DefaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg, nil)
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			lg.Warn("cleanup error", logger.Err(err))
		}
	}()

	lg.Info("starting",
		logger.String("env", cfg.App.Env),
		logger.String("storage", cfg.Storage.Driver),
		logger.KeyID(app.Issuer.KID()),
	)
	if err := server.Run(ctx, cfg, app); err != nil {
		lg.Error("server stopped with error", logger.Err(err))
		_ = app.Close()
		os.Exit(1)
	}
	lg.Info("bye")
}

// loadDotenv carga .env.<APP_ENV> y luego .env; godotenv no pisa variables
// ya definidas, así que el primero gana.
func loadDotenv(explicit string) {
	if explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			log.Printf("dotenv: %v", err)
		}
		return
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		_ = godotenv.Load(fmt.Sprintf(".env.%s", env))
	}
	_ = godotenv.Load()
}
