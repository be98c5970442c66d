// Package database 管理 PostgreSQL 连接和表结构
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL 驱动

	"github.com/paiban/oncall/internal/config"
	"github.com/paiban/oncall/pkg/logger"
)

// DB 数据库连接封装，记录慢查询
type DB struct {
	*sql.DB
	slowQuery time.Duration
}

// Open 打开连接并检查可用性
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("数据库连接成功")

	return Wrap(conn, cfg.SlowQuery), nil
}

// Wrap 包装已有连接
func Wrap(conn *sql.DB, slowQuery time.Duration) *DB {
	return &DB{DB: conn, slowQuery: slowQuery}
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	logger.Info().Msg("关闭数据库连接")
	return db.DB.Close()
}

// Health 健康检查
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// schema 值班结果表
var schema = []string{
	`CREATE TABLE IF NOT EXISTS schedule_results (
		id         TEXT PRIMARY KEY,
		parameters JSONB NOT NULL,
		result     JSONB NOT NULL,
		score      DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_results_created_at ON schedule_results (created_at DESC)`,
}

// Migrate 在一个事务中创建所需的表
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("事务回滚失败: %v (原始错误: %w)", rbErr, err)
			}
			return fmt.Errorf("执行迁移失败: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("事务提交失败: %w", err)
	}

	logger.Info().Int("statements", len(schema)).Msg("数据库迁移完成")
	return nil
}

// ExecContext 执行SQL语句
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer db.observe(query, time.Now())
	return db.DB.ExecContext(ctx, query, args...)
}

// QueryContext 执行查询
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer db.observe(query, time.Now())
	return db.DB.QueryContext(ctx, query, args...)
}

// QueryRowContext 执行单行查询
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer db.observe(query, time.Now())
	return db.DB.QueryRowContext(ctx, query, args...)
}

func (db *DB) observe(query string, start time.Time) {
	if db.slowQuery <= 0 {
		return
	}
	if d := time.Since(start); d > db.slowQuery {
		logger.Warn().
			Str("query", truncateQuery(query)).
			Dur("duration", d).
			Msg("慢SQL查询")
	}
}

// truncateQuery 截断长查询
func truncateQuery(query string) string {
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
