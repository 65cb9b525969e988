package cache

import (
	"context"
	"testing"
	"time"
)

func TestNilCache(t *testing.T) {
	c := New(nil, time.Minute, "test")
	if c != nil {
		t.Fatalf("New(nil) = %v, want nil", c)
	}

	ctx := context.Background()
	c.SetJSON(ctx, "k", map[string]int{"a": 1})
	var out map[string]int
	if c.GetJSON(ctx, "k", &out) {
		t.Error("nil cache reported a hit")
	}
	c.Invalidate(ctx, "k")
}

func TestNewRedisClientWithoutAddr(t *testing.T) {
	if rdb := NewRedisClient("", "", 0); rdb != nil {
		t.Errorf("NewRedisClient(\"\") = %v, want nil", rdb)
	}
}
