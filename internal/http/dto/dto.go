// Package dto contiene los contratos JSON de la API y su validación de input.
package dto

import (
	"math"

	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/validation"
)

// ValidationError convierte los problemas del checker en un 400 VALIDATION_FAILED.
// Devuelve nil si no hay problemas.
func ValidationError(location string, c *validation.Checker) error {
	if c.OK() {
		return nil
	}
	fields := make([]errors.FieldError, 0, len(c.Problems()))
	for _, p := range c.Problems() {
		fields = append(fields, errors.FieldError{Field: p.Field, Location: location, Message: p.Message})
	}
	return errors.ErrValidation.WithFields(fields...)
}

// IDResponse respuesta mínima de register/login/refresh.
type IDResponse struct {
	ID string `json:"id"`
}

// MessageResponse respuesta de operaciones sin payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// MaxOffset tope de (page-1)*limit; entra en el OFFSET de Postgres y en un int de 32 bits.
const MaxOffset = math.MaxInt32

// Offset calcula (page-1)*limit. Una página fuera de rango es un 400, no un overflow.
func Offset(page, limit int) (int, error) {
	if page < 1 || limit < 1 || page-1 > MaxOffset/limit {
		return 0, errors.ErrValidation.WithFields(errors.FieldError{
			Field: "page", Location: "query", Message: "out of range",
		})
	}
	return (page - 1) * limit, nil
}

// TotalPages = ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
