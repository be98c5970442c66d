// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// requestIDKey 请求ID在 context 中的键
type requestIDKey struct{}

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			output = os.Stdout
			if cfg.FilePath != "" {
				if f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
					output = f
				}
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			timeFormat := cfg.TimeFormat
			if timeFormat == "" {
				timeFormat = time.RFC3339
			}
			output = zerolog.ConsoleWriter{Out: output, TimeFormat: timeFormat}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	Init(DefaultConfig())
	return &logger
}

// ContextWithRequestID 把请求ID写入 context
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID 从 context 读取请求ID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()
	if reqID := RequestID(ctx); reqID != "" {
		l = l.With().Str("request_id", reqID).Logger()
	}
	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// OptimizerLogger 值班优化器专用日志器
type OptimizerLogger struct {
	base *zerolog.Logger
}

// NewOptimizerLogger 创建优化器日志器
func NewOptimizerLogger(ctx context.Context) *OptimizerLogger {
	l := WithContext(ctx).With().Str("component", "optimizer").Logger()
	return &OptimizerLogger{base: &l}
}

// StartOptimize 记录优化开始
func (l *OptimizerLogger) StartOptimize(mode string, staff, days, trials int) {
	l.base.Info().
		Str("mode", mode).
		Int("staff", staff).
		Int("days", days).
		Int("trials", trials).
		Msg("开始生成值班表")
}

// SlotSkipped 记录无法填满的班次
func (l *OptimizerLogger) SlotSkipped(trial int, date, grade string, required, eligible int) {
	l.base.Debug().
		Int("trial", trial).
		Str("date", date).
		Str("grade", grade).
		Int("required", required).
		Int("eligible", eligible).
		Msg("可用人数不足，跳过班次")
}

// Stage 记录筛选阶段结果
func (l *OptimizerLogger) Stage(grade string, stage, retained int, best float64) {
	l.base.Debug().
		Str("grade", grade).
		Int("stage", stage).
		Int("retained", retained).
		Float64("best", best).
		Msg("筛选完成")
}

// InvariantViolation 记录结果不满足约束
func (l *OptimizerLogger) InvariantViolation(kind, staff, date, details string) {
	l.base.Warn().
		Str("kind", kind).
		Str("staff", staff).
		Str("date", date).
		Str("details", details).
		Msg("值班结果违反约束")
}

// OptimizeComplete 记录优化完成
func (l *OptimizerLogger) OptimizeComplete(duration time.Duration, score float64, assignments int) {
	l.base.Info().
		Dur("duration", duration).
		Float64("score", score).
		Int("assignments", assignments).
		Msg("值班表生成完成")
}

// NoFeasibleSchedule 记录无可行解
func (l *OptimizerLogger) NoFeasibleSchedule(duration time.Duration, trials int) {
	l.base.Warn().
		Dur("duration", duration).
		Int("trials", trials).
		Msg("所有尝试均未产生任何排班")
}
