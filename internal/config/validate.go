package config

import (
	"fmt"
	"net/netip"
	"strings"
)

// ConfigError agrupa los problemas de configuración detectados al arrancar.
// Es fatal: el proceso no debe servir tráfico con config inválida.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "config: " + strings.Join(e.Problems, "; ")
}

// Validate revisa secretos y valores críticos.
func (c *Config) Validate() error {
	var p []string

	if strings.TrimSpace(c.JWT.PrivateKey) == "" && strings.TrimSpace(c.JWT.PrivateKeyPath) == "" {
		p = append(p, "jwt private key missing (JWT_PRIVATE_KEY or JWT_PRIVATE_KEY_PATH)")
	}
	if strings.TrimSpace(c.JWT.RefreshSecret) == "" {
		p = append(p, "refresh token secret missing (REFRESH_TOKEN_SECRET)")
	} else if len(c.JWT.RefreshSecret) < 32 && c.App.Env == "prod" {
		p = append(p, "refresh token secret must be at least 32 bytes in prod")
	}

	switch c.Storage.Driver {
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			p = append(p, "database url missing (DATABASE_URL)")
		}
	case "memory":
		if c.App.Env == "prod" {
			p = append(p, "memory storage is not allowed in prod")
		}
	default:
		p = append(p, fmt.Sprintf("unknown storage driver %q", c.Storage.Driver))
	}

	switch c.Security.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		p = append(p, fmt.Sprintf("unknown password hasher %q", c.Security.PasswordHasher))
	}

	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		p = append(p, "token lifetimes must be positive")
	}
	if c.JWKS.URI != "" && !strings.HasPrefix(c.JWKS.URI, "http://") && !strings.HasPrefix(c.JWKS.URI, "https://") {
		p = append(p, "jwks uri must be http(s)")
	}
	if c.Rate.Enabled && (c.Rate.MaxRequests <= 0 || c.Rate.Window <= 0) {
		p = append(p, "rate limit needs positive max_requests and window")
	}
	for _, tp := range c.Server.TrustedProxies {
		if !validProxy(tp) {
			p = append(p, fmt.Sprintf("invalid trusted proxy %q (expected IP or CIDR)", tp))
		}
	}

	if len(p) > 0 {
		return &ConfigError{Problems: p}
	}
	return nil
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}
