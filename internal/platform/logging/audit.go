package logging

import (
	"context"

	"go.uber.org/zap"
)

const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// AuditEvent describes a mutation performed on behalf of a user.
type AuditEvent struct {
	Action       string // create, update, delete
	UserID       string
	ResourceType string // task, tag
	ResourceID   string
	Result       string
	Details      map[string]any
}

// LogAuditEvent writes the event with audit.* fields.
func LogAuditEvent(ctx context.Context, ev AuditEvent) {
	fields := []zap.Field{
		zap.String("audit.action", ev.Action),
		zap.String("audit.user_id", ev.UserID),
		zap.String("audit.resource_type", ev.ResourceType),
		zap.String("audit.resource_id", ev.ResourceID),
		zap.String("audit.result", ev.Result),
	}
	if len(ev.Details) > 0 {
		fields = append(fields, zap.Any("audit.details", ev.Details))
	}
	LoggerFromContext(ctx).Info("audit event", fields...)
}
