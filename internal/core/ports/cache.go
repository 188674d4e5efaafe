package ports

import (
	"context"
	"time"
)

// Cache is a named-resource JSON cache. Get reports whether the key was
// present; a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}
