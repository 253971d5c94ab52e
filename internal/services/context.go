package services

import "context"

type contextKey string

const (
	conversationKey contextKey = "conversation_id"
	messageSIDKey   contextKey = "message_sid"
	requestIDKey    contextKey = "request_id"
)

// WithConversationID annotates context with the conversation identifier,
// normally the sender's phone number.
func WithConversationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, conversationKey, id)
}

// ConversationIDFromContext extracts the conversation identifier if present.
func ConversationIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(conversationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithMessageSID annotates context with the inbound SMS provider identifier.
func WithMessageSID(ctx context.Context, sid string) context.Context {
	if sid == "" {
		return ctx
	}
	return context.WithValue(ctx, messageSIDKey, sid)
}

// MessageSIDFromContext returns the inbound message identifier if present.
func MessageSIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(messageSIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
