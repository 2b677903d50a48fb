package service

import (
	"context"
	"sync"
	"time"
)

// Cache namespaces for the public catalog list endpoints. Invalidation is
// namespace-wide: a write to an entity drops every cached page for it.
const (
	CacheNamespaceCategories = "catalog:categories"
	CacheNamespaceTypes      = "catalog:types"
	CacheNamespaceProducts   = "catalog:products"
)

// ListCacheStore holds pre-serialized list response bodies keyed by
// namespace and query key.
type ListCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

// ListCacheStoreWithAge additionally reports how long an entry has been in
// the cache, which handlers surface via the Age response header.
type ListCacheStoreWithAge interface {
	ListCacheStore
	GetWithAge(ctx context.Context, namespace, key string) ([]byte, bool, time.Duration, error)
}

type NoopListCacheStore struct{}

func NewNoopListCacheStore() *NoopListCacheStore {
	return &NoopListCacheStore{}
}

func (s *NoopListCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopListCacheStore) GetWithAge(context.Context, string, string) ([]byte, bool, time.Duration, error) {
	return nil, false, 0, nil
}

func (s *NoopListCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopListCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type memoryCacheEntry struct {
	payload   []byte
	createdAt time.Time
	expiresAt time.Time
}

// InMemoryListCacheStore is a process-local store used when Redis caching is
// disabled. Expired entries are dropped lazily on read.
type InMemoryListCacheStore struct {
	mu    sync.RWMutex
	store map[string]map[string]memoryCacheEntry
}

func NewInMemoryListCacheStore() *InMemoryListCacheStore {
	return &InMemoryListCacheStore{
		store: make(map[string]map[string]memoryCacheEntry),
	}
}

func (s *InMemoryListCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	payload, ok, _, err := s.GetWithAge(ctx, namespace, key)
	return payload, ok, err
}

func (s *InMemoryListCacheStore) GetWithAge(_ context.Context, namespace, key string) ([]byte, bool, time.Duration, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	ns, ok := s.store[namespace]
	if !ok {
		s.mu.RUnlock()
		return nil, false, 0, nil
	}
	entry, ok := ns[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, 0, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		if ns2, ok2 := s.store[namespace]; ok2 {
			delete(ns2, key)
			if len(ns2) == 0 {
				delete(s.store, namespace)
			}
		}
		s.mu.Unlock()
		return nil, false, 0, nil
	}
	age := now.Sub(entry.createdAt)
	if age < 0 {
		age = 0
	}
	return append([]byte(nil), entry.payload...), true, age, nil
}

func (s *InMemoryListCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string]memoryCacheEntry)
		s.store[namespace] = ns
	}
	ns[key] = memoryCacheEntry{
		payload:   append([]byte(nil), value...),
		createdAt: time.Now().UTC(),
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *InMemoryListCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, namespace)
	return nil
}
