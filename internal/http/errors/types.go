// Package errors define la taxonomía de errores expuesta por la API HTTP.
//
// Los services devuelven *AppError (o un error cualquiera, que se traduce a 500);
// sólo controllers y middlewares escriben la respuesta vía WriteError.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError describe un problema de validación sobre un campo concreto.
type FieldError struct {
	Field    string `json:"field"`
	Location string `json:"location"` // body | query | path | cookie
	Message  string `json:"message"`
}

// AppError es el error estándar de la aplicación.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Detail     string       `json:"detail,omitempty"`
	Fields     []FieldError `json:"fields,omitempty"`
	HTTPStatus int          `json:"-"`
	Err        error        `json:"-"` // causa, sólo para logs
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is compara por Code, así errors.Is(err, ErrNotFound) funciona con copias
// creadas por WithDetail/WithCause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsInternal indica si el error debe loguearse con su causa.
func (e *AppError) IsInternal() bool {
	return e.HTTPStatus >= http.StatusInternalServerError
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap crea un AppError envolviendo un error existente
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// FromError convierte cualquier error en un AppError.
// Si en la cadena no hay un AppError, el resultado es un 500 que conserva la causa.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// Is es errors.Is; evita importar ambos paquetes "errors" en controllers.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// WithDetail devuelve una COPIA con el detalle indicado.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithDetailf es WithDetail con formato.
func (e *AppError) WithDetailf(format string, args ...any) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// WithCause devuelve una COPIA con la causa indicada.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// WithFields devuelve una COPIA con los errores por campo.
func (e *AppError) WithFields(fields ...FieldError) *AppError {
	newErr := *e
	newErr.Fields = append([]FieldError(nil), fields...)
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// ---------------------------------------------------------------------------------
// 400 Bad Request - Validación / Conflictos
// ---------------------------------------------------------------------------------

var (
	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "One or more fields are invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidParameter = &AppError{
		Code:       "INVALID_PARAMETER",
		Message:    "A path or query parameter is invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrEmptyPatch = &AppError{
		Code:       "EMPTY_PATCH",
		Message:    "No fields to update were provided.",
		HTTPStatus: http.StatusBadRequest,
	}

	// Los conflictos se reportan como 400 para no distinguirlos de errores de input.
	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "The resource conflicts with an existing one.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrEmailAlreadyInUse = &AppError{
		Code:       "EMAIL_IN_USE",
		Message:    "Email is already in use.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrTenantHasUsers = &AppError{
		Code:       "TENANT_HAS_USERS",
		Message:    "Tenant still has users assigned.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "The request body exceeds the maximum allowed size.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// ---------------------------------------------------------------------------------
// 401 Unauthorized - Autenticación
// ---------------------------------------------------------------------------------

var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication is required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "email or password incorrect",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "The token is invalid, expired or revoked.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Code:       "TOKEN_MISSING",
		Message:    "No authentication token was provided.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// ---------------------------------------------------------------------------------
// 403 Forbidden - Permisos
// ---------------------------------------------------------------------------------

var (
	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "You do not have permission to perform this action.",
		HTTPStatus: http.StatusForbidden,
	}
)

// ---------------------------------------------------------------------------------
// 404 Not Found
// ---------------------------------------------------------------------------------

var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "The requested resource was not found.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "User not found.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrTenantNotFound = &AppError{
		Code:       "TENANT_NOT_FOUND",
		Message:    "Tenant not found.",
		HTTPStatus: http.StatusNotFound,
	}
)

// ---------------------------------------------------------------------------------
// 405 / 429
// ---------------------------------------------------------------------------------

var (
	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed for this resource.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// ---------------------------------------------------------------------------------
// 5xx
// ---------------------------------------------------------------------------------

var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "The service is temporarily unavailable.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
