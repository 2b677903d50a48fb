package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sandeepkv93/product-catalog-service/internal/observability"
)

// CachedListLoader implements the cache-aside read path for list endpoints.
// A cold entry is rebuilt by exactly one caller per process while concurrent
// callers share the leader's result.
type CachedListLoader struct {
	store ListCacheStore
	sf    singleflight.Group
}

func NewCachedListLoader(store ListCacheStore) *CachedListLoader {
	return &CachedListLoader{store: store}
}

// GetOrBuild returns the cached payload for namespace/key, or runs build and
// stores its result for ttl. The returned age and fromCache flag describe
// provenance for conditional response headers.
func (l *CachedListLoader) GetOrBuild(ctx context.Context, namespace, key string, ttl time.Duration, build func(ctx context.Context) ([]byte, error)) ([]byte, time.Duration, bool, error) {
	if l.store != nil && ttl > 0 {
		payload, ok, age, err := l.lookup(ctx, namespace, key)
		if err != nil {
			observability.RecordListCacheEvent(ctx, namespace, "read_error")
		} else if ok {
			observability.RecordListCacheEvent(ctx, namespace, "hit")
			return payload, age, true, nil
		} else {
			observability.RecordListCacheEvent(ctx, namespace, "miss")
		}
	}

	sfKey := fmt.Sprintf("%s|%s", namespace, key)
	result, err, shared := l.sf.Do(sfKey, func() (interface{}, error) {
		if l.store != nil && ttl > 0 {
			payload, ok, _, err := l.lookup(ctx, namespace, key)
			if err == nil && ok {
				return payload, nil
			}
		}
		payload, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if l.store != nil && ttl > 0 {
			if err := l.store.Set(ctx, namespace, key, payload, ttl); err != nil {
				observability.RecordListCacheEvent(ctx, namespace, "store_error")
			}
		}
		return payload, nil
	})
	if shared {
		observability.RecordListCacheEvent(ctx, namespace, "singleflight_shared")
	} else {
		observability.RecordListCacheEvent(ctx, namespace, "rebuild")
	}
	if err != nil {
		return nil, 0, false, err
	}
	payload, ok := result.([]byte)
	if !ok {
		return nil, 0, false, fmt.Errorf("invalid cached payload type")
	}
	return payload, 0, false, nil
}

// Invalidate drops every cached entry in the namespace.
func (l *CachedListLoader) Invalidate(ctx context.Context, namespace string) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.InvalidateNamespace(ctx, namespace); err != nil {
		observability.RecordListCacheEvent(ctx, namespace, "invalidate_error")
		return err
	}
	observability.RecordListCacheEvent(ctx, namespace, "invalidate")
	return nil
}

func (l *CachedListLoader) lookup(ctx context.Context, namespace, key string) ([]byte, bool, time.Duration, error) {
	if withAge, ok := l.store.(ListCacheStoreWithAge); ok {
		return withAge.GetWithAge(ctx, namespace, key)
	}
	payload, ok, err := l.store.Get(ctx, namespace, key)
	return payload, ok, 0, err
}
