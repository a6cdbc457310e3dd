// Package oidc expone el documento JWKS del servicio.
package oidc

import (
	"net/http"

	"github.com/dropDatabas3/tenantauth/internal/http/errors"
)

// JWKSSource es cualquier cosa que sepa serializar sus claves públicas.
type JWKSSource interface {
	JWKS() []byte
}

// JWKSController maneja GET/HEAD /.well-known/jwks.json
type JWKSController struct {
	source JWKSSource
}

func NewJWKSController(source JWKSSource) *JWKSController {
	return &JWKSController{source: source}
}

func (c *JWKSController) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		errors.WriteError(w, errors.ErrMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.source.JWKS())
}
