package helpers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tenantauth/internal/http/errors"
)

// DefaultMaxBodyBytes límite del body JSON si el request no trae uno propio.
const DefaultMaxBodyBytes int64 = 1 << 20

type bodyLimitKey struct{}

// WithBodyLimit fija el límite de body para ReadJSON (server.max_body_bytes).
func WithBodyLimit(ctx context.Context, n int64) context.Context {
	return context.WithValue(ctx, bodyLimitKey{}, n)
}

func bodyLimit(ctx context.Context) int64 {
	if n, ok := ctx.Value(bodyLimitKey{}).(int64); ok && n > 0 {
		return n
	}
	return DefaultMaxBodyBytes
}

// ReadJSON decodifica el body en v. Tolera campos desconocidos.
// Exige Content-Type JSON y limita el tamaño del body.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		return errors.ErrInvalidJSON.WithDetail("Content-Type must be application/json")
	}

	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit(r.Context()))
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.ErrBodyTooLarge
		case stderrors.Is(err, io.EOF):
			return errors.ErrInvalidJSON.WithDetail("empty body")
		default:
			return errors.ErrInvalidJSON.WithCause(err)
		}
	}
	return nil
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
