// Package config 提供配置管理
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	API       APIConfig       `envPrefix:"API_"`
	Optimizer OptimizerConfig `envPrefix:"OPTIMIZER_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name      string `env:"NAME" envDefault:"oncall"`
	Env       string `env:"ENV" envDefault:"development"`
	Port      int    `env:"PORT" envDefault:"8000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // json/console
}

// DatabaseConfig 数据库配置，未启用时结果保存在内存中
type DatabaseConfig struct {
	Enabled         bool          `env:"ENABLED" envDefault:"false"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME" envDefault:"oncall"`
	User            string        `env:"USER" envDefault:"oncall"`
	Password        string        `env:"PASSWORD"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
	SlowQuery       time.Duration `env:"SLOW_QUERY" envDefault:"100ms"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"false"`
	Host     string        `env:"HOST" envDefault:"localhost"`
	Port     int           `env:"PORT" envDefault:"6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	PoolSize int           `env:"POOL_SIZE" envDefault:"10"`
	TTL      time.Duration `env:"TTL" envDefault:"24h"` // 结果缓存时间
}

// Addr 返回Redis地址
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig API配置
type APIConfig struct {
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"60s"`
	MaxBodyBytes int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	CORS         CORSConfig    `envPrefix:"CORS_"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"true"`
	Origins []string `env:"ORIGINS" envDefault:"*"`
}

// OptimizerConfig 值班优化配置
type OptimizerConfig struct {
	DefaultTrials int `env:"DEFAULT_TRIALS" envDefault:"1000"` // 请求未指定 find 时使用
	MaxTrials     int `env:"MAX_TRIALS" envDefault:"200000"`
	Workers       int `env:"WORKERS" envDefault:"0"` // 0 表示 GOMAXPROCS
	// 固定种子，0 表示每次使用系统熵
	Seed uint64 `env:"SEED" envDefault:"0"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.Optimizer.DefaultTrials < 1 {
		return nil, fmt.Errorf("OPTIMIZER_DEFAULT_TRIALS must be positive, got %d", cfg.Optimizer.DefaultTrials)
	}
	if cfg.Optimizer.MaxTrials < cfg.Optimizer.DefaultTrials {
		return nil, fmt.Errorf("OPTIMIZER_MAX_TRIALS (%d) must not be less than OPTIMIZER_DEFAULT_TRIALS (%d)",
			cfg.Optimizer.MaxTrials, cfg.Optimizer.DefaultTrials)
	}
	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}
