package recruitment

import (
	"context"
	"time"
)

// SelectionCache stores ranked auto-select results. A nil cache disables caching.
type SelectionCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}
