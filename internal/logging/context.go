package logging

import (
	"context"
	"log/slog"

	"textflix/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldConversationID is the standardized structured logging key for conversation identifiers.
	FieldConversationID = "conversation_id"
	// FieldMessageSID is the standardized structured logging key for inbound SMS provider identifiers.
	FieldMessageSID = "message_sid"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.ConversationIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldConversationID, id))
	}
	if sid, ok := services.MessageSIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldMessageSID, sid))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
