package testutil

import (
	"context"
	"testing"
	"time"

	"passgate/pkg/requestcontext"
)

// Context returns a test context carrying an actor, a request ID, and a fixed
// time so service assertions are deterministic.
func Context(t *testing.T, actorID string) context.Context {
	t.Helper()
	ctx := context.Background()
	ctx = requestcontext.WithActorID(ctx, actorID)
	ctx = requestcontext.WithRequestID(ctx, "test-request")
	ctx = requestcontext.WithTime(ctx, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return ctx
}
