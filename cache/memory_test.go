package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/bastion"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	set := bastion.NewPermissionSet("users:read", "users:write")

	// Miss
	_, ok := c.GetEffective(ctx, "t1", "u1")
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.SetEffective(ctx, "t1", "u1", set)
	got, ok := c.GetEffective(ctx, "t1", "u1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.Has("users:read") {
		t.Fatal("expected users:read in cached set")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	c.SetEffective(ctx, "t1", "u1", bastion.NewPermissionSet("users:read"))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.GetEffective(ctx, "t1", "u1")
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidateTenant(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.SetEffective(ctx, "t1", "u1", bastion.NewPermissionSet("users:read"))
	c.SetEffective(ctx, "t1", "u2", bastion.NewPermissionSet("users:write"))
	c.SetEffective(ctx, "t2", "u1", bastion.NewPermissionSet("users:read"))

	c.InvalidateTenant(ctx, "t1")

	if _, ok := c.GetEffective(ctx, "t1", "u1"); ok {
		t.Fatal("t1 u1 should be invalidated")
	}
	if _, ok := c.GetEffective(ctx, "t1", "u2"); ok {
		t.Fatal("t1 u2 should be invalidated")
	}
	if _, ok := c.GetEffective(ctx, "t2", "u1"); !ok {
		t.Fatal("t2 u1 should still be cached")
	}
}

func TestMemoryCacheInvalidateUser(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.SetEffective(ctx, "t1", "u1", bastion.NewPermissionSet("users:read"))
	c.SetEffective(ctx, "t1", "u2", bastion.NewPermissionSet("users:read"))

	c.InvalidateUser(ctx, "t1", "u1")

	if _, ok := c.GetEffective(ctx, "t1", "u1"); ok {
		t.Fatal("u1 should be invalidated")
	}
	if _, ok := c.GetEffective(ctx, "t1", "u2"); !ok {
		t.Fatal("u2 should still be cached")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		c.SetEffective(ctx, "t1", string(rune('a'+i)), bastion.NewPermissionSet("users:read"))
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}
