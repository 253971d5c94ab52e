package services_test

import (
	"context"
	"testing"

	"textflix/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithConversationID(ctx, "+15555550100")
	ctx = services.WithMessageSID(ctx, "SM123")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ConversationIDFromContext(ctx); !ok || id != "+15555550100" {
		t.Fatalf("unexpected conversation id: %v %v", id, ok)
	}
	if sid, ok := services.MessageSIDFromContext(ctx); !ok || sid != "SM123" {
		t.Fatalf("unexpected message sid: %v %v", sid, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithConversationID(ctx, "")
	ctx = services.WithMessageSID(ctx, "")
	if _, ok := services.ConversationIDFromContext(ctx); ok {
		t.Fatal("expected no conversation id")
	}
	if _, ok := services.MessageSIDFromContext(ctx); ok {
		t.Fatal("expected no message sid")
	}
}
