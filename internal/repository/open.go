package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/paiban/oncall/internal/config"
	"github.com/paiban/oncall/internal/database"
	"github.com/paiban/oncall/pkg/logger"
)

// Stores 按配置组装的结果仓储及其连接
type Stores struct {
	Results ResultStore

	db    *database.DB
	redis *redis.Client
}

// Open 按配置打开仓储
// 未启用数据库时使用内存仓储；启用 Redis 时在外层加缓存
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := &Stores{}

	if cfg.Database.Enabled {
		db, err := database.Open(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		s.db = db
		s.Results = NewPostgresResultRepository(db)
	} else {
		logger.Warn().Msg("数据库未启用，值班结果仅保存在内存中")
		s.Results = NewMemoryResultStore()
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			s.Close()
			return nil, fmt.Errorf("Redis连接测试失败: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr()).Dur("ttl", cfg.Redis.TTL).Msg("Redis连接成功")
		s.redis = client
		s.Results = NewCachedResultStore(s.Results, NewRedisCache(client), cfg.Redis.TTL)
	}

	return s, nil
}

// Health 检查已启用的连接
func (s *Stores) Health(ctx context.Context) error {
	if s.db != nil {
		if err := s.db.Health(ctx); err != nil {
			return fmt.Errorf("数据库不可用: %w", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis不可用: %w", err)
		}
	}
	return nil
}

// Close 关闭全部连接
func (s *Stores) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
