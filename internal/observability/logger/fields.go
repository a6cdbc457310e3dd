package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tenantauth/internal/util"
)

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

func Method(v string) zap.Field {
	return zap.String("method", v)
}

func Path(v string) zap.Field {
	return zap.String("path", v)
}

func Route(v string) zap.Field {
	return zap.String("route", v)
}

func Status(v int) zap.Field {
	return zap.Int("status", v)
}

func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

func UserAgent(v string) zap.Field {
	return zap.String("user_agent", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// =================================================================================
// NEGOCIO
// =================================================================================

func TenantID(v string) zap.Field {
	return zap.String("tenant_id", v)
}

func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

func Role(v string) zap.Field {
	return zap.String("role", v)
}

// TokenID identifica un refresh token (jti). Nunca loguear el token firmado.
func TokenID(v string) zap.Field {
	return zap.String("jti", v)
}

// KeyID identifica una clave de firma (kid).
func KeyID(v string) zap.Field {
	return zap.String("kid", v)
}

// Email crea un campo con el email enmascarado.
func Email(v string) zap.Field {
	return zap.String("email", util.MaskEmail(v))
}

// =================================================================================
// SISTEMA
// =================================================================================

func Component(v string) zap.Field {
	return zap.String("component", v)
}

func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer indica la capa: handler, controller, service, repository.
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// DATOS
// =================================================================================

func Count(v int) zap.Field {
	return zap.Int("count", v)
}

func ID(v string) zap.Field {
	return zap.String("id", v)
}

func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}

func String(key, v string) zap.Field {
	return zap.String(key, v)
}

func Strings(key string, v []string) zap.Field {
	return zap.Strings(key, v)
}

func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

