// Package metrics 提供Prometheus监控指标
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oncall"

// Registry 指标注册表
type Registry struct {
	reg *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	optimizeTotal    *prometheus.CounterVec
	optimizeDuration *prometheus.HistogramVec
	trials           prometheus.Counter
	skippedSlots     *prometheus.CounterVec
	lastScore        prometheus.Gauge
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *Registry {
	once.Do(func() {
		registry = NewRegistry()
		registry.reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
	return registry
}

// NewRegistry 创建独立注册表，测试中使用
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	// 请求计数器
	r.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP请求总数",
	}, []string{"method", "path", "status"})

	// 请求延迟直方图
	r.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP请求延迟",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"method", "path"})

	// 排班生成
	r.optimizeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimize_total",
		Help:      "值班表生成次数",
	}, []string{"mode", "status"})

	r.optimizeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "optimize_duration_seconds",
		Help:      "值班表生成耗时",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
	}, []string{"mode"})

	r.trials = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trials_total",
		Help:      "已执行的随机尝试次数",
	})

	r.skippedSlots = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skipped_slots_total",
		Help:      "胜出方案中未能填充的班次数",
	}, []string{"grade"})

	r.lastScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_score",
		Help:      "最近一次胜出方案的评分",
	})

	r.reg.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.optimizeTotal,
		r.optimizeDuration,
		r.trials,
		r.skippedSlots,
		r.lastScore,
	)
	return r
}

// Gatherer 返回底层采集器
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler 返回Prometheus格式的指标HTTP处理器
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// RecordRequest 记录请求指标
func (r *Registry) RecordRequest(method, path string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// OptimizeRun 一次生成的统计
type OptimizeRun struct {
	Mode     string
	Status   string // success / infeasible / invalid / canceled / error
	Duration time.Duration
	Trials   int
	Score    float64
	Skipped  map[string]int // 等级 -> 未填充班次数
}

// RecordOptimize 记录生成指标
func (r *Registry) RecordOptimize(run OptimizeRun) {
	r.optimizeTotal.WithLabelValues(run.Mode, run.Status).Inc()
	r.optimizeDuration.WithLabelValues(run.Mode).Observe(run.Duration.Seconds())
	r.trials.Add(float64(run.Trials))
	for grade, n := range run.Skipped {
		r.skippedSlots.WithLabelValues(grade).Add(float64(n))
	}
	if run.Status == "success" {
		r.lastScore.Set(run.Score)
	}
}

// Handler 全局注册表的HTTP处理器
func Handler() http.Handler {
	return GetRegistry().Handler()
}

// RecordRequestMetrics 记录请求指标
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	GetRegistry().RecordRequest(method, path, status, duration)
}

// RecordOptimize 记录生成指标
func RecordOptimize(run OptimizeRun) {
	GetRegistry().RecordOptimize(run)
}
