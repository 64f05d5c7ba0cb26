package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// TypedCache 提供类型安全的缓存操作
type TypedCache[T any] struct {
	cache CacheService
}

func NewTypedCache[T any](cache CacheService) *TypedCache[T] {
	return &TypedCache[T]{cache: cache}
}

func (tc *TypedCache[T]) Set(key string, value T, expiration time.Duration) error {
	return tc.cache.SetCache(key, value, expiration)
}

// Get 获取缓存，自动反序列化
func (tc *TypedCache[T]) Get(key string) (T, bool, error) {
	var zero T

	rawValue, exists := tc.cache.GetCache(key)
	if !exists {
		return zero, false, nil
	}
	result, err := decode[T](rawValue)
	if err != nil {
		return zero, true, err
	}
	return result, true, nil
}

// GetOrLoad 缓存命中即返回，否则单飞加载
func (tc *TypedCache[T]) GetOrLoad(key string, expiration time.Duration, loader func() (T, error)) (T, error) {
	var zero T
	raw, err := tc.cache.GetOrLoad(key, expiration, func() (interface{}, error) {
		return loader()
	})
	if err != nil {
		return zero, err
	}
	return decode[T](raw)
}

func (tc *TypedCache[T]) Delete(key string) error {
	return tc.cache.DelCache(key)
}

func decode[T any](rawValue interface{}) (T, error) {
	var zero T

	if typedValue, ok := rawValue.(T); ok {
		return typedValue, nil
	}

	// L2 hands back JSON strings; anything else goes through a JSON round trip
	var result T
	switch v := rawValue.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &result); err != nil {
			return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
		}
		return result, nil
	case []byte:
		if err := json.Unmarshal(v, &result); err != nil {
			return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
		}
		return result, nil
	default:
		jsonData, err := json.Marshal(rawValue)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal intermediate value: %w", err)
		}
		if err := json.Unmarshal(jsonData, &result); err != nil {
			return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
		}
		return result, nil
	}
}
