// Package server arma las dependencias del servicio a partir de la config
// y expone el ciclo de vida del http.Server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/tenantauth/internal/config"
	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	authctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/health"
	oidcctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/oidc"
	tenantsctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/tenants"
	usersctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/users"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
	"github.com/dropDatabas3/tenantauth/internal/http/router"
	"github.com/dropDatabas3/tenantauth/internal/http/services/health"
	"github.com/dropDatabas3/tenantauth/internal/http/services/identity"
	"github.com/dropDatabas3/tenantauth/internal/http/services/session"
	"github.com/dropDatabas3/tenantauth/internal/http/services/tenant"
	jwtx "github.com/dropDatabas3/tenantauth/internal/jwt"
	"github.com/dropDatabas3/tenantauth/internal/metrics"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
	"github.com/dropDatabas3/tenantauth/internal/rate"
	"github.com/dropDatabas3/tenantauth/internal/security/password"
	"github.com/dropDatabas3/tenantauth/internal/store/memory"
	"github.com/dropDatabas3/tenantauth/internal/store/pg"
	"github.com/dropDatabas3/tenantauth/internal/util"
)

// Stores agrupa los repositorios que consumen los services.
type Stores struct {
	Users   repository.UserRepository
	Tenants repository.TenantRepository
	Tokens  repository.TokenRepository
	Ping    health.Pinger // nil => sin check de base de datos
	Close   func() error
}

// App es el resultado del wiring: handler + piezas que main necesita.
type App struct {
	Handler  http.Handler
	Sessions session.Service
	Metrics  *metrics.Metrics
	Issuer   *jwtx.Issuer

	closers []func() error
}

// Close libera recursos en orden inverso al de creación.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenStores abre el backend configurado. Con driver postgres y
// flags.migrate corre las migraciones pendientes antes de devolver.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "memory":
		m := memory.New()
		return &Stores{
			Users:   m.Users(),
			Tenants: m.Tenants(),
			Tokens:  m.Tokens(),
			Close:   func() error { return nil },
		}, nil

	case "", "postgres":
		db, err := pg.Open(ctx, pg.Config{
			DSN:             cfg.Storage.DSN,
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
			ConnectTimeout:  cfg.Storage.Postgres.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		logger.L().Info("postgres connected", logger.Component("store"), logger.String("dsn", util.MaskDSN(cfg.Storage.DSN)))
		if cfg.Flags.Migrate {
			mig, err := pg.NewMigrator(db.SQL, nil)
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			n, err := mig.Up(ctx)
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			logger.L().Info("migrations applied", logger.Component("migrate"), logger.Count(n))
		}
		return &Stores{
			Users:   pg.NewUserRepo(db.SQL),
			Tenants: pg.NewTenantRepo(db.SQL),
			Tokens:  pg.NewTokenRepo(db.SQL),
			Ping:    health.PingFunc(db.Ping),
			Close:   db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Storage.Driver)
	}
}

// NewIssuer carga la clave RSA y arma el Issuer con los TTLs de config.
func NewIssuer(cfg *config.Config) (*jwtx.Issuer, error) {
	key, err := jwtx.LoadRSAPrivateKey(cfg.JWT.PrivateKey, cfg.JWT.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	return jwtx.NewIssuer(jwtx.IssuerConfig{
		Issuer:        cfg.JWT.Issuer,
		PrivateKey:    key,
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
}

// NewLimiter devuelve el limiter de /auth/login y /auth/register:
// Redis si hay REDIS_ADDR, memoria si no, nil si está deshabilitado.
func NewLimiter(cfg *config.Config) (rate.Limiter, func() error) {
	noop := func() error { return nil }
	if !cfg.Rate.Enabled {
		return nil, noop
	}
	if cfg.Redis.Addr == "" {
		return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.Rate.Window), noop
	}
	client := rdb.NewClient(&rdb.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})
	return rate.NewRedisLimiter(client, cfg.Redis.Prefix, cfg.Rate.MaxRequests, cfg.Rate.Window), client.Close
}

// Build arma el grafo completo. Stores puede venir de afuera (tests).
func Build(ctx context.Context, cfg *config.Config, stores *Stores) (*App, error) {
	log := logger.L().With(logger.Component("wiring"))
	app := &App{Metrics: metrics.New()}

	if stores == nil {
		var err error
		if stores, err = OpenStores(ctx, cfg); err != nil {
			return nil, err
		}
	}
	if stores.Close != nil {
		app.closers = append(app.closers, stores.Close)
	}

	issuer, err := NewIssuer(cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Issuer = issuer

	var keys jwtx.KeySet = issuer.StaticKeySet()
	if cfg.JWKS.URI != "" {
		keys = jwtx.NewRemoteKeySet(cfg.JWKS.URI, jwtx.RemoteOptions{
			CacheTTL:         cfg.JWKS.CacheTTL,
			FetchesPerMinute: cfg.JWKS.FetchesPerMinute,
			Timeout:          cfg.JWKS.FetchTimeout,
			OnFetch:          app.Metrics.ObserveJWKSFetch,
		})
		log.Info("validating access tokens against remote JWKS", logger.String("jwks_uri", cfg.JWKS.URI))
	}
	parser := &jwtx.Parser{
		Issuer:        issuer.Issuer(),
		Keys:          keys,
		RefreshSecret: issuer.RefreshSecret(),
	}

	hasher, err := password.New(password.Options{
		Algorithm:  cfg.Security.PasswordHasher,
		BcryptCost: cfg.Security.BcryptCost,
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	blacklist, err := password.LoadBlacklist(cfg.Security.PasswordBlacklistPath)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	proxies, err := helpers.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	limiter, closeLimiter := NewLimiter(cfg)
	app.closers = append(app.closers, closeLimiter)

	identitySvc := identity.NewService(identity.Deps{
		Users:   stores.Users,
		Tenants: stores.Tenants,
		Hasher:  hasher,
		Policy:  password.Policy{MinLength: cfg.Security.PasswordPolicy.MinLength, Blacklist: blacklist},
		Metrics: app.Metrics,
	})
	tenantSvc := tenant.NewService(tenant.Deps{Tenants: stores.Tenants, Users: stores.Users})
	app.Sessions = session.NewService(session.Deps{
		Tokens:  stores.Tokens,
		Users:   stores.Users,
		Issuer:  issuer,
		Parser:  parser,
		Metrics: app.Metrics,
	})

	checks := map[string]health.Pinger{}
	if stores.Ping != nil {
		checks["database"] = stores.Ping
	}
	healthSvc := health.NewService(health.Deps{Version: cfg.App.Version, Checks: checks})

	app.Handler = router.New(router.Deps{
		Auth: authctrl.NewController(authctrl.Deps{
			Identity: identitySvc,
			Sessions: app.Sessions,
			Cookies:  helpers.CookieConfig{Domain: cfg.Cookies.Domain, Secure: cfg.Cookies.Secure},
		}),
		Users:        usersctrl.NewController(identitySvc),
		Tenants:      tenantsctrl.NewController(tenantSvc),
		JWKS:         oidcctrl.NewJWKSController(issuer),
		Health:       healthctrl.NewController(healthSvc),
		Access:       parser,
		Refresh:      app.Sessions,
		Limiter:      limiter,
		Metrics:      app.Metrics,
		CORSOrigins:  cfg.Server.CORSAllowedOrigins,
		Proxies:      proxies,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	return app, nil
}
