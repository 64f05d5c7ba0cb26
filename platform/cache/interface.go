package cache

import "time"

// CacheService is the layered L1/L2 cache surface used by read-heavy
// endpoints (stats). Values round-trip through JSON at the L2 tier.
type CacheService interface {
	GetCache(key string) (interface{}, bool)
	SetCache(key string, value interface{}, expiration time.Duration) error
	DelCache(key string) error
	GetOrLoad(key string, expiration time.Duration, loader func() (interface{}, error)) (interface{}, error)
}
