package helpers

import (
	"net/http"
	"strings"
	"time"
)

// Nombres de las cookies de sesión.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// CookieConfig controla atributos comunes de las cookies de sesión.
type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite // default Strict
}

func (c CookieConfig) sameSite() http.SameSite {
	if c.SameSite == 0 {
		return http.SameSiteStrictMode
	}
	return c.SameSite
}

func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func BuildCookie(name, value string, cfg CookieConfig, ttl time.Duration, now time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.sameSite(),
	}
	if strings.TrimSpace(cfg.Domain) != "" {
		ck.Domain = cfg.Domain
	}
	if ttl > 0 {
		ck.Expires = now.Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func BuildDeletionCookie(name string, cfg CookieConfig) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.sameSite(),
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
	if strings.TrimSpace(cfg.Domain) != "" {
		ck.Domain = cfg.Domain
	}
	return ck
}

// SessionCookies son los valores a entregar tras register/login/refresh.
type SessionCookies struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken string
	RefreshTTL   time.Duration
}

// SetSessionCookies escribe access_token y refresh_token (HttpOnly, SameSite=Strict).
func SetSessionCookies(w http.ResponseWriter, cfg CookieConfig, s SessionCookies) {
	now := time.Now()
	http.SetCookie(w, BuildCookie(AccessCookie, s.AccessToken, cfg, s.AccessTTL, now))
	http.SetCookie(w, BuildCookie(RefreshCookie, s.RefreshToken, cfg, s.RefreshTTL, now))
}

// ClearSessionCookies expira ambas cookies.
func ClearSessionCookies(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, BuildDeletionCookie(AccessCookie, cfg))
	http.SetCookie(w, BuildDeletionCookie(RefreshCookie, cfg))
}
