// Package cache provides caching implementations for effective permission
// sets.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/bastion"
)

// Compile-time interface check.
var _ bastion.Cache = (*Memory)(nil)

// Memory is an in-memory cache for per-user effective permission sets with
// TTL-based expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	set       bastion.PermissionSet
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     time.Minute,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetEffective returns a cached effective permission set.
func (m *Memory) GetEffective(_ context.Context, tenantID, userID string) (bastion.PermissionSet, bool) {
	key := cacheKey(tenantID, userID)
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.set, true
}

// SetEffective stores an effective permission set in the cache.
func (m *Memory) SetEffective(_ context.Context, tenantID, userID string, set bastion.PermissionSet) {
	key := cacheKey(tenantID, userID)
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict if at capacity.
	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			m.evictOne()
		}
	}

	m.entries[key] = &entry{
		set:       set,
		expiresAt: time.Now().Add(m.ttl),
	}
}

// InvalidateTenant removes all cached sets for a tenant.
func (m *Memory) InvalidateTenant(_ context.Context, tenantID string) {
	prefix := tenantID + ":"
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(m.entries, k)
		}
	}
}

// InvalidateUser removes the cached set for a single user.
func (m *Memory) InvalidateUser(_ context.Context, tenantID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, cacheKey(tenantID, userID))
}

func cacheKey(tenantID, userID string) string {
	return tenantID + ":" + userID
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
