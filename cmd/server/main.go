// 值班排班服务
// 主程序入口

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/paiban/oncall/internal/config"
	"github.com/paiban/oncall/internal/handler"
	"github.com/paiban/oncall/internal/metrics"
	"github.com/paiban/oncall/internal/repository"
	"github.com/paiban/oncall/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// .env 文件可选
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "加载 .env 失败: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})

	if err := run(cfg); err != nil {
		logger.Error().Err(err).Msg("服务异常退出")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.GetRegistry()
	}

	schedules, err := handler.NewScheduleHandler(handler.ScheduleHandlerConfig{
		Store: stores.Results,
		Defaults: handler.Defaults{
			Trials:    cfg.Optimizer.DefaultTrials,
			MaxTrials: cfg.Optimizer.MaxTrials,
			Workers:   cfg.Optimizer.Workers,
			Seed:      cfg.Optimizer.Seed,
		},
		Timeout:      cfg.API.Timeout,
		MaxBodyBytes: cfg.API.MaxBodyBytes,
		Metrics:      reg,
	})
	if err != nil {
		return fmt.Errorf("创建处理器失败: %w", err)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Schedules:   schedules,
		Metrics:     reg,
		MetricsPath: cfg.Metrics.Path,
		CORS:        cfg.API.CORS.Enabled,
		CORSOrigins: cfg.API.CORS.Origins,
		Build:       handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		Health: func(r *http.Request) error {
			return stores.Health(r.Context())
		},
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.API.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("env", cfg.App.Env).
			Str("version", Version).
			Bool("database", cfg.Database.Enabled).
			Bool("redis", cfg.Redis.Enabled).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("服务器启动失败: %w", err)
	case <-quit:
	}

	logger.Info().Msg("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器关闭失败: %w", err)
	}

	logger.Info().Msg("服务器已关闭")
	return nil
}
