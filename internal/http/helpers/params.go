package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/tenantauth/internal/http/dto"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
)

// PathUUID lee el parámetro de ruta {name} y exige un UUID válido.
func PathUUID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errors.ErrInvalidParameter.WithFields(errors.FieldError{
			Field: name, Location: "path", Message: "must be a valid uuid",
		})
	}
	return id.String(), nil
}

// Defaults de paginación.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page parámetros de paginación ya normalizados.
type Page struct {
	Page  int
	Limit int
}

// ParsePage lee ?page y ?limit. Ausentes => defaults; presentes deben ser enteros positivos.
func ParsePage(r *http.Request) (Page, error) {
	p := Page{Page: DefaultPage, Limit: DefaultLimit}
	var fields []errors.FieldError

	q := r.URL.Query()
	if s := strings.TrimSpace(q.Get("page")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			fields = append(fields, errors.FieldError{Field: "page", Location: "query", Message: "must be a positive integer"})
		} else {
			p.Page = n
		}
	}
	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			fields = append(fields, errors.FieldError{Field: "limit", Location: "query", Message: "must be a positive integer"})
		} else {
			p.Limit = min(n, MaxLimit)
		}
	}
	if len(fields) > 0 {
		return Page{}, errors.ErrValidation.WithFields(fields...)
	}
	// page enorme pero válida como entero: (page-1)*limit desbordaría
	if _, err := dto.Offset(p.Page, p.Limit); err != nil {
		return Page{}, err
	}
	return p, nil
}

// QueryBool interpreta ?name=true|1.
func QueryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(name)))
	return b
}
