package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nitesh/newsmap/pkg/models"
)

const (
	recordPrefix = "newsmap:record:"
	listPrefix   = "newsmap:list:"
	listGenKey   = "newsmap:list:gen"
)

// RedisCache caches single records and category listings.
//
// Records never change once stored, so record entries only expire by TTL.
// Listing keys embed a generation number; bumping it on every insert makes
// all older listing entries unreachable without scanning for them.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to addr and pings it.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// RecordKey is the cache key for a record code.
func RecordKey(code string) string {
	return recordPrefix + code
}

// ListKey is the cache key for a listing at generation gen.
func ListKey(gen int64, category models.Category) string {
	if !category.IsFilter() {
		category = models.CategoryAll
	}
	return fmt.Sprintf("%sv%d:%s", listPrefix, gen, category)
}

// GetRecord returns the cached record; ok is false on a miss.
func (c *RedisCache) GetRecord(ctx context.Context, code string) (*models.Record, bool, error) {
	var rec models.Record
	ok, err := c.getJSON(ctx, RecordKey(code), &rec)
	if !ok || err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// SetRecord caches rec.
func (c *RedisCache) SetRecord(ctx context.Context, rec *models.Record) error {
	return c.setJSON(ctx, RecordKey(rec.Code), rec)
}

// GetList returns a cached listing for the current generation, along with
// that generation. On a miss the caller reads the store and passes the same
// generation to SetList, so a listing read before a concurrent insert can
// only land under a generation that insert has already retired.
func (c *RedisCache) GetList(ctx context.Context, category models.Category) ([]*models.Record, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	var recs []*models.Record
	ok, err := c.getJSON(ctx, ListKey(gen, category), &recs)
	if !ok || err != nil {
		return nil, gen, false, err
	}
	return recs, gen, true, nil
}

// SetList caches a listing under generation gen.
func (c *RedisCache) SetList(ctx context.Context, gen int64, category models.Category, recs []*models.Record) error {
	return c.setJSON(ctx, ListKey(gen, category), recs)
}

// InvalidateLists bumps the listing generation.
func (c *RedisCache) InvalidateLists(ctx context.Context) error {
	if err := c.client.Incr(ctx, listGenKey).Err(); err != nil {
		return fmt.Errorf("failed to bump list generation: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, listGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read list generation: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// Treat undecodable entries as a miss and drop them.
		c.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}
