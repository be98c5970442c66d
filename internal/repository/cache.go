package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paiban/oncall/pkg/logger"
)

// 结果缓存键前缀
const cacheKeyPrefix = "oncall:result:"

// Cache 键值缓存接口
type Cache interface {
	// Get 未命中时返回 ok=false 且 err=nil
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache 基于 Redis 的缓存
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get 读取缓存
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set 写入缓存
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedResultStore 在结果仓储前加一层缓存
// 缓存故障只记录日志，不影响主存储
type CachedResultStore struct {
	store ResultStore
	cache Cache
	ttl   time.Duration
}

// NewCachedResultStore 创建带缓存的仓储
func NewCachedResultStore(store ResultStore, cache Cache, ttl time.Duration) *CachedResultStore {
	return &CachedResultStore{store: store, cache: cache, ttl: ttl}
}

// Save 写入主存储后回填缓存
func (s *CachedResultStore) Save(ctx context.Context, r *StoredResult) error {
	if err := s.store.Save(ctx, r); err != nil {
		return err
	}
	s.fill(ctx, r)
	return nil
}

// Get 优先读缓存
func (s *CachedResultStore) Get(ctx context.Context, id string) (*StoredResult, error) {
	data, ok, err := s.cache.Get(ctx, cacheKeyPrefix+id)
	if err != nil {
		logger.Warn().Err(err).Str("schedule_id", id).Msg("读取结果缓存失败")
	}
	if ok {
		var r StoredResult
		if err := json.Unmarshal(data, &r); err == nil {
			return &r, nil
		}
		logger.Warn().Str("schedule_id", id).Msg("结果缓存内容损坏")
	}

	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, r)
	return r, nil
}

// List 直接查询主存储
func (s *CachedResultStore) List(ctx context.Context, filter ListFilter) ([]*ResultSummary, int, error) {
	return s.store.List(ctx, filter)
}

func (s *CachedResultStore) fill(ctx context.Context, r *StoredResult) {
	data, err := json.Marshal(r)
	if err != nil {
		logger.Warn().Err(err).Str("schedule_id", r.ID).Msg("序列化结果缓存失败")
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+r.ID, data, s.ttl); err != nil {
		logger.Warn().Err(err).Str("schedule_id", r.ID).Msg("写入结果缓存失败")
	}
}
