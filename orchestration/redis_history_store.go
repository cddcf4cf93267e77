package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/stockmind/stockmind/core"
)

const (
	historyKeyPrefix  = "stockmind:history:"
	defaultHistoryTTL = 24 * time.Hour
)

// RedisHistoryStoreOption configures the Redis history store.
type RedisHistoryStoreOption func(*redisHistoryStoreConfig)

type redisHistoryStoreConfig struct {
	redisURL  string
	keyPrefix string
	ttl       time.Duration
	logger    core.Logger
}

// WithHistoryRedisURL sets the Redis connection URL.
func WithHistoryRedisURL(url string) RedisHistoryStoreOption {
	return func(c *redisHistoryStoreConfig) {
		c.redisURL = url
	}
}

// WithHistoryKeyPrefix sets a custom key prefix for history records.
func WithHistoryKeyPrefix(prefix string) RedisHistoryStoreOption {
	return func(c *redisHistoryStoreConfig) {
		c.keyPrefix = prefix
	}
}

// WithHistoryTTL sets the retention period for history records.
func WithHistoryTTL(ttl time.Duration) RedisHistoryStoreOption {
	return func(c *redisHistoryStoreConfig) {
		c.ttl = ttl
	}
}

// WithHistoryLogger sets the logger for store operations.
func WithHistoryLogger(logger core.Logger) RedisHistoryStoreOption {
	return func(c *redisHistoryStoreConfig) {
		c.logger = logger
	}
}

// RedisHistoryStore is a Redis-backed HistoryStore with TTL-based cleanup and
// a sorted index for newest-first listing.
type RedisHistoryStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    core.Logger
}

// NewRedisHistoryStore creates a Redis-backed history store.
//
// Environment variable precedence:
//   - REDIS_URL or STOCKMIND_REDIS_URL: connection URL (default: redis://localhost:6379)
//   - STOCKMIND_HISTORY_TTL: retention period (default: 24h)
//   - STOCKMIND_HISTORY_KEY_PREFIX: key prefix (default: stockmind:history)
func NewRedisHistoryStore(opts ...RedisHistoryStoreOption) (*RedisHistoryStore, error) {
	cfg := &redisHistoryStoreConfig{
		redisURL:  redisURLFromEnv(),
		keyPrefix: core.GetEnvString("STOCKMIND_HISTORY_KEY_PREFIX", historyKeyPrefix),
		ttl:       core.GetEnvDuration("STOCKMIND_HISTORY_TTL", defaultHistoryTTL),
		logger:    &core.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	redisOpt, err := redis.ParseURL(cfg.redisURL)
	if err != nil {
		// Treat it as a plain address if URL parsing fails
		redisOpt = &redis.Options{Addr: cfg.redisURL}
	}
	client := redis.NewClient(redisOpt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed at %s: %w\n"+
			"Hint: check REDIS_URL or STOCKMIND_REDIS_URL, or use WithHistoryRedisURL()", cfg.redisURL, err)
	}

	cfg.logger.Info("Redis history store initialized", map[string]interface{}{
		"redis_addr": redisOpt.Addr,
		"key_prefix": cfg.keyPrefix,
		"ttl":        cfg.ttl.String(),
	})

	return &RedisHistoryStore{
		client:    client,
		keyPrefix: cfg.keyPrefix,
		ttl:       cfg.ttl,
		logger:    cfg.logger,
	}, nil
}

// Record saves one execution record and updates the listing index.
func (s *RedisHistoryStore) Record(ctx context.Context, record *ExecutionRecord) error {
	if record == nil || record.RequestID == "" {
		return ErrRecordInvalid
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	key := s.recordKey(record.RequestID)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	// Index update is best effort; listing is a convenience, not critical.
	if err := s.client.ZAdd(ctx, s.indexKey(), &redis.Z{
		Score:  float64(record.Timestamp.UnixNano()),
		Member: record.RequestID,
	}).Err(); err != nil {
		s.logger.Warn("Failed to update history index", map[string]interface{}{
			"request_id": record.RequestID,
			"error":      err.Error(),
		})
	}
	return nil
}

// Get retrieves a record by request ID.
func (s *RedisHistoryStore) Get(ctx context.Context, requestID string) (*ExecutionRecord, error) {
	if requestID == "" {
		return nil, ErrRecordInvalid
	}

	data, err := s.client.Get(ctx, s.recordKey(requestID)).Bytes()
	if err == redis.Nil {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var record ExecutionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("deserialization failed: %w", err)
	}
	return &record, nil
}

// ListRecent returns up to limit records, newest first. Index entries whose
// record has already expired are pruned on read.
func (s *RedisHistoryStore) ListRecent(ctx context.Context, limit int) ([]ExecutionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index read failed: %w", err)
	}

	records := make([]ExecutionRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.Get(ctx, id)
		if err == ErrRecordNotFound {
			s.client.ZRem(ctx, s.indexKey(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// Close releases the Redis client.
func (s *RedisHistoryStore) Close() error {
	return s.client.Close()
}

func (s *RedisHistoryStore) recordKey(requestID string) string {
	return s.keyPrefix + requestID
}

func (s *RedisHistoryStore) indexKey() string {
	return s.keyPrefix + "index"
}

// redisURLFromEnv resolves the Redis URL. The specific STOCKMIND_REDIS_URL
// wins over the generic REDIS_URL, matching the config layer.
func redisURLFromEnv() string {
	if url := core.GetEnvString("STOCKMIND_REDIS_URL", ""); url != "" {
		return url
	}
	return core.GetEnvString("REDIS_URL", "redis://localhost:6379")
}
