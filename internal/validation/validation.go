// Package validation reúne las reglas de input compartidas por los DTOs HTTP.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Domain rules:
// - Labels de [a-z0-9-], sin guión al inicio o al final.
// - Al menos dos labels (ej: acme.com).
// - Case-insensitive; se compara en minúsculas.
var domainRe = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

// Phone: dígitos con separadores comunes y "+" opcional al inicio.
var phoneRe = regexp.MustCompile(`^\+?[0-9 ()\-.]+$`)

// ValidEmail acepta sólo la forma addr-spec (sin display name).
func ValidEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

func ValidDomain(s string) bool {
	return len(s) <= 253 && domainRe.MatchString(strings.ToLower(s))
}

func ValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

func ValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Problem es un campo inválido con su mensaje.
type Problem struct {
	Field   string
	Message string
}

// Checker acumula problemas; cada regla se salta si el campo ya falló.
type Checker struct {
	problems []Problem
	failed   map[string]bool
}

func (c *Checker) Add(field, msg string) {
	if c.failed == nil {
		c.failed = map[string]bool{}
	}
	if c.failed[field] {
		return
	}
	c.failed[field] = true
	c.problems = append(c.problems, Problem{Field: field, Message: msg})
}

func (c *Checker) Required(field, v string) bool {
	if strings.TrimSpace(v) == "" {
		c.Add(field, "is required")
		return false
	}
	return true
}

func (c *Checker) MinLen(field, v string, n int) {
	if utf8.RuneCountInString(v) < n {
		c.Add(field, fmt.Sprintf("must be at least %d characters", n))
	}
}

func (c *Checker) MaxLen(field, v string, n int) {
	if utf8.RuneCountInString(v) > n {
		c.Add(field, fmt.Sprintf("must be at most %d characters", n))
	}
}

func (c *Checker) Email(field, v string) {
	if !ValidEmail(v) {
		c.Add(field, "must be a valid email")
	}
}

func (c *Checker) Domain(field, v string) {
	if !ValidDomain(v) {
		c.Add(field, "must be a valid domain")
	}
}

func (c *Checker) Phone(field, v string) {
	if !ValidPhone(v) {
		c.Add(field, "must be a valid phone number")
	}
}

func (c *Checker) UUID(field, v string) {
	if !ValidUUID(v) {
		c.Add(field, "must be a valid uuid")
	}
}

func (c *Checker) OneOf(field, v string, allowed ...string) {
	for _, a := range allowed {
		if v == a {
			return
		}
	}
	c.Add(field, "must be one of: "+strings.Join(allowed, ", "))
}

func (c *Checker) OK() bool {
	return len(c.problems) == 0
}

func (c *Checker) Problems() []Problem {
	return c.problems
}
