package plancache

import (
	"context"
	"testing"
	"time"

	"ai-tripplanner-be/internal/entity"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// With no redis client configured every path must be a safe no-op: reads
// miss, writes and deletes return without touching anything.
func TestOutlineCacheFailOpenWithoutBackend(t *testing.T) {
	cache := NewRedisOutlineCache(nil, noopLogger{})
	ctx := context.Background()

	outline := &entity.PlanOutline{
		Destination: "Kyoto",
		Days: []entity.DayTitle{
			{Day: 1, Title: "Arrival and Gion"},
		},
	}

	if got, ok := cache.Get(ctx, "abc123"); ok || got != nil {
		t.Fatalf("Get on disabled cache = (%v, %v), want (nil, false)", got, ok)
	}

	// Must not panic
	cache.Set(ctx, "abc123", outline, time.Hour)
	cache.Delete(ctx, "abc123")

	if err := cache.InvalidateDestination(ctx, "Kyoto"); err != nil {
		t.Fatalf("InvalidateDestination on disabled cache returned error: %v", err)
	}

	if got, ok := cache.Get(ctx, "abc123"); ok || got != nil {
		t.Fatalf("Set on disabled cache must not store, got (%v, %v)", got, ok)
	}
}

func TestCacheKeyPrefix(t *testing.T) {
	key := cacheKey("deadbeef")
	if key != "planner:outline:deadbeef" {
		t.Errorf("cacheKey = %q, want planner:outline:deadbeef", key)
	}
}
