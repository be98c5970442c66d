package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paiban/oncall/internal/metrics"
	"github.com/paiban/oncall/internal/middleware"
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// RouterConfig 路由配置
type RouterConfig struct {
	Schedules   *ScheduleHandler
	Metrics     *metrics.Registry
	MetricsPath string // 为空时不暴露指标端点
	CORS        bool
	CORSOrigins []string
	Build       BuildInfo
	// 健康检查，返回错误时 /health 报告 503
	Health func(r *http.Request) error
}

// NewRouter 创建HTTP路由
// 中间件执行顺序：recover -> requestID -> cors -> logging -> handler
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover)
	r.Use(middleware.RequestID)
	if cfg.CORS {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	r.Use(middleware.Logging(cfg.Metrics))

	// 系统端点
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(req); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "oncall"})
	})
	r.Get("/version", func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, http.StatusOK, cfg.Build)
	})
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, cfg.Metrics.Handler())
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"message": fmt.Sprintf("值班排班 API %s", cfg.Build.Version),
				"endpoints": map[string]string{
					"generate": "POST /api/v1/schedules",
					"list":     "GET /api/v1/schedules",
					"get":      "GET /api/v1/schedules/{id}",
				},
			})
		})
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", cfg.Schedules.Generate)
			r.Get("/", cfg.Schedules.List)
			r.Get("/{id}", cfg.Schedules.Get)
		})
	})

	// 兼容旧接口
	r.Post("/schedule", cfg.Schedules.Generate)
	r.Get("/result/{id}", cfg.Schedules.Get)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":   true,
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
	return r
}
