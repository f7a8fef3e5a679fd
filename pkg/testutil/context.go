package testutil

import (
	"context"
	"time"

	"gazette/pkg/requestcontext"
)

// FixedTime is the reference instant used by deterministic tests.
var FixedTime = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

// ContextWithFixedTime returns a context whose request time is pinned to
// FixedTime so timestamps in assertions are stable.
func ContextWithFixedTime() context.Context {
	return requestcontext.WithTime(context.Background(), FixedTime)
}
