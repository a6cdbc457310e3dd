// Package util reúne helpers chicos sin dependencias del dominio.
package util

import (
	"net/url"
	"strings"
)

// MaskEmail deja la primera letra del usuario y del primer label del dominio:
// "ada@example.com" => "a…@e….com".
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		switch {
		case s == "":
			return ""
		case len(s) <= 3:
			return "***"
		default:
			return s[:1] + "…" + s[len(s)-1:]
		}
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	parts := strings.Split(dom, ".")
	if len(parts[0]) > 1 {
		parts[0] = parts[0][:1] + "…"
	}
	return user + "@" + strings.Join(parts, ".")
}

// MaskDSN oculta el password de un DSN URL (postgres://u:p@h/db).
// Un DSN que no parsea como URL se oculta completo.
func MaskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	return u.String()
}
