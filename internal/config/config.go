package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath se usa si CONFIG_PATH no está definido.
const DefaultPath = "configs/config.yaml"

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"` // debug | info | warn | error
	} `yaml:"log"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		TrustedProxies     []string      `yaml:"trusted_proxies"` // IPs/CIDRs cuyo X-Forwarded-For se acepta
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
		IdleTimeout        time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
		MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int           `yaml:"max_open_conns"`
			MinConns        int           `yaml:"min_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
			ConnectTimeout  time.Duration `yaml:"connect_timeout"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Redis struct {
		Addr     string `yaml:"addr"` // vacío => limiter en memoria
		DB       int    `yaml:"db"`
		Password string `yaml:"password"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	JWT struct {
		Issuer         string        `yaml:"issuer"`
		PrivateKey     string        `yaml:"private_key"` // PEM inline
		PrivateKeyPath string        `yaml:"private_key_path"`
		RefreshSecret  string        `yaml:"refresh_secret"`
		AccessTTL      time.Duration `yaml:"access_ttl"`
		RefreshTTL     time.Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	// JWKS remoto para validar access tokens. Vacío => clave propia.
	JWKS struct {
		URI              string        `yaml:"uri"`
		CacheTTL         time.Duration `yaml:"cache_ttl"`
		FetchesPerMinute int           `yaml:"fetches_per_minute"`
		FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	} `yaml:"jwks"`

	Cookies struct {
		Secure bool   `yaml:"secure"`
		Domain string `yaml:"domain"`
	} `yaml:"cookies"`

	Rate struct {
		Enabled     bool          `yaml:"enabled"`
		MaxRequests int           `yaml:"max_requests"`
		Window      time.Duration `yaml:"window"`
	} `yaml:"rate"`

	Security struct {
		PasswordHasher string `yaml:"password_hasher"` // bcrypt | argon2id
		BcryptCost     int    `yaml:"bcrypt_cost"`
		PasswordPolicy struct {
			MinLength int `yaml:"min_length"`
		} `yaml:"password_policy"`
		PasswordBlacklistPath string `yaml:"password_blacklist_path"`
	} `yaml:"security"`

	Tokens struct {
		PruneInterval time.Duration `yaml:"prune_interval"`
	} `yaml:"tokens"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Load lee el YAML (opcional: si no existe se usan defaults), aplica
// overrides de entorno y completa defaults. No valida secretos; eso es Validate.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// sin archivo: defaults + env
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	// Normalizar ruta de blacklist (si relativa) respecto al directorio del YAML
	if p := strings.TrimSpace(c.Security.PasswordBlacklistPath); p != "" && !filepath.IsAbs(p) {
		c.Security.PasswordBlacklistPath = filepath.Clean(filepath.Join(filepath.Dir(path), p))
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "auth-service"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5501"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 10
	}
	if c.Storage.Postgres.ConnectTimeout == 0 {
		c.Storage.Postgres.ConnectTimeout = 5 * time.Second
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "rl:"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "auth-service"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = time.Hour
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 720 * time.Hour // 30d
	}
	if c.JWKS.CacheTTL == 0 {
		c.JWKS.CacheTTL = 10 * time.Minute
	}
	if c.JWKS.FetchesPerMinute == 0 {
		c.JWKS.FetchesPerMinute = 5
	}
	if c.JWKS.FetchTimeout == 0 {
		c.JWKS.FetchTimeout = 5 * time.Second
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 20
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Security.PasswordHasher == "" {
		c.Security.PasswordHasher = "bcrypt"
	}
	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = 10
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 8
	}
	if c.Tokens.PruneInterval == 0 {
		c.Tokens.PruneInterval = time.Hour
	}
	// en prod las cookies siempre viajan con Secure
	if strings.EqualFold(c.App.Env, "prod") {
		c.Cookies.Secure = true
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("APP_VERSION"); ok {
		c.App.Version = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	} else if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvCSV("TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
	} else if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvDur("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_PRIVATE_KEY"); ok {
		c.JWT.PrivateKey = v
	}
	if v, ok := getEnvStr("JWT_PRIVATE_KEY_PATH"); ok {
		c.JWT.PrivateKeyPath = v
	}
	if v, ok := getEnvStr("REFRESH_TOKEN_SECRET"); ok {
		c.JWT.RefreshSecret = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvDur("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}
	if v, ok := getEnvStr("JWKS_URI"); ok {
		c.JWKS.URI = v
	}
	if v, ok := getEnvDur("JWKS_CACHE_TTL"); ok {
		c.JWKS.CacheTTL = v
	}

	// COOKIES
	if v, ok := getEnvBool("COOKIE_SECURE"); ok {
		c.Cookies.Secure = v
	}
	if v, ok := getEnvStr("COOKIE_DOMAIN"); ok {
		c.Cookies.Domain = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvDur("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	// SECURITY
	if v, ok := getEnvStr("PASSWORD_HASHER"); ok {
		c.Security.PasswordHasher = strings.ToLower(v)
	}
	if v, ok := getEnvInt("BCRYPT_COST"); ok {
		c.Security.BcryptCost = v
	}
	if v, ok := getEnvStr("PASSWORD_BLACKLIST_PATH"); ok {
		c.Security.PasswordBlacklistPath = v
	}

	if v, ok := getEnvDur("TOKENS_PRUNE_INTERVAL"); ok {
		c.Tokens.PruneInterval = v
	}
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}
