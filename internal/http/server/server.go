package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/tenantauth/internal/config"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

// Pruner borra refresh tokens vencidos.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// Run sirve HTTP y corre el loop de pruning hasta que ctx se cancele;
// después hace shutdown ordenado con server.shutdown_timeout.
func Run(ctx context.Context, cfg *config.Config, app *App) error {
	log := logger.L().With(logger.Component("server"))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		PruneLoop(gctx, app.Sessions, cfg.Tokens.PruneInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", logger.String("timeout", cfg.Server.ShutdownTimeout.String()))
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

// PruneLoop ejecuta p.Prune cada interval hasta que ctx termine.
func PruneLoop(ctx context.Context, p Pruner, interval time.Duration) {
	if p == nil || interval <= 0 {
		return
	}
	log := logger.L().With(logger.Component("prune"))
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.Prune(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("refresh token pruning failed", logger.Err(err))
				}
				continue
			}
			if n > 0 {
				log.Info("expired refresh tokens pruned", logger.Count(n))
			}
		}
	}
}
