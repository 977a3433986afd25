package cache

import (
	"context"
	"time"
)

// Store is a key-value cache with per-key expiration. The examination
// service uses it to cache pipeline results so repeated polls of an
// analysis do not hit the database.
type Store interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}
