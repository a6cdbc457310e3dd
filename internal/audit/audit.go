// Package audit registra eventos de seguridad en el logger "audit".
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

type Event string

const (
	LoginSucceeded Event = "login.succeeded"
	LoginFailed    Event = "login.failed"
	UserRegistered Event = "user.registered"
	UserCreated    Event = "user.created"
	UserDeleted    Event = "user.deleted"
	TenantDeleted  Event = "tenant.deleted"
	SessionRevoked Event = "session.revoked"
	RefreshReused  Event = "refresh.reused"
)

// Log emite el evento con los campos del request (request_id, user_id) que
// ya trae el logger del contexto.
func Log(ctx context.Context, ev Event, fields ...zap.Field) {
	fields = append(fields, zap.String("event", string(ev)))
	logger.From(ctx).Named("audit").Info(string(ev), fields...)
}
