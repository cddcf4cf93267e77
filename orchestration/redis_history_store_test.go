package orchestration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/stockmind/stockmind/core"
)

// setupHistoryTestRedis creates a miniredis instance for history store testing
func setupHistoryTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisHistoryStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := &RedisHistoryStore{
		client:    client,
		keyPrefix: "test:history:",
		ttl:       time.Hour,
		logger:    &core.NoOpLogger{},
	}
	return mr, store
}

func TestRedisHistoryStoreRoundTrip(t *testing.T) {
	_, store := setupHistoryTestRedis(t)
	ctx := context.Background()

	record := &ExecutionRecord{
		RequestID:   "req-42",
		Timestamp:   time.Now().UTC(),
		Query:       "comprehensive analysis of ITEM_007",
		Workflow:    "comprehensive_analysis",
		StepCount:   4,
		FailedSteps: 1,
		Success:     true,
	}
	if err := store.Record(ctx, record); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Get(ctx, "req-42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Query != record.Query || got.Workflow != record.Workflow || got.StepCount != 4 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestRedisHistoryStoreGetMissing(t *testing.T) {
	_, store := setupHistoryTestRedis(t)

	if _, err := store.Get(context.Background(), "nope"); err != ErrRecordNotFound {
		t.Errorf("Get(missing) = %v, want ErrRecordNotFound", err)
	}
}

func TestRedisHistoryStoreListRecentNewestFirst(t *testing.T) {
	_, store := setupHistoryTestRedis(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 1; i <= 5; i++ {
		record := &ExecutionRecord{
			RequestID: fmt.Sprintf("req-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Query:     "q",
			Success:   true,
		}
		if err := store.Record(ctx, record); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("recent = %d records, want 3", len(recent))
	}
	if recent[0].RequestID != "req-5" || recent[2].RequestID != "req-3" {
		t.Errorf("order = %q..%q, want req-5..req-3", recent[0].RequestID, recent[2].RequestID)
	}
}

func TestRedisHistoryStoreTTLApplied(t *testing.T) {
	mr, store := setupHistoryTestRedis(t)
	ctx := context.Background()

	if err := store.Record(ctx, &ExecutionRecord{RequestID: "req-ttl", Timestamp: time.Now(), Query: "q"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	if _, err := store.Get(ctx, "req-ttl"); err != ErrRecordNotFound {
		t.Errorf("expected record to expire, got %v", err)
	}
}

func TestRedisHistoryStoreListPrunesExpiredIndexEntries(t *testing.T) {
	mr, store := setupHistoryTestRedis(t)
	ctx := context.Background()

	if err := store.Record(ctx, &ExecutionRecord{RequestID: "req-old", Timestamp: time.Now(), Query: "q"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if err := store.Record(ctx, &ExecutionRecord{RequestID: "req-new", Timestamp: time.Now(), Query: "q"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	recent, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 1 || recent[0].RequestID != "req-new" {
		t.Errorf("recent = %+v, want only req-new", recent)
	}
}

func TestRedisURLFromEnvPrefersSpecificVariable(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://generic:6379")
	t.Setenv("STOCKMIND_REDIS_URL", "redis://specific:6379")
	if got := redisURLFromEnv(); got != "redis://specific:6379" {
		t.Errorf("url = %q, want the STOCKMIND_REDIS_URL value", got)
	}

	t.Setenv("STOCKMIND_REDIS_URL", "")
	if got := redisURLFromEnv(); got != "redis://generic:6379" {
		t.Errorf("url = %q, want the REDIS_URL value", got)
	}

	t.Setenv("REDIS_URL", "")
	if got := redisURLFromEnv(); got != "redis://localhost:6379" {
		t.Errorf("url = %q, want the built-in default", got)
	}
}
