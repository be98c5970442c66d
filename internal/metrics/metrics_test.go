package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value 读取指定指标的当前值
func value(t *testing.T, r *Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matches(m, labels) {
				switch {
				case m.GetCounter() != nil:
					return m.GetCounter().GetValue()
				case m.GetGauge() != nil:
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("指标 %s%v 不存在", name, labels)
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestRecordRequest(t *testing.T) {
	r := NewRegistry()
	r.RecordRequest("GET", "/health", 200, 5*time.Millisecond)
	r.RecordRequest("GET", "/health", 200, 5*time.Millisecond)
	r.RecordRequest("POST", "/api/v1/schedules", 400, time.Millisecond)

	assert.Equal(t, 2.0, value(t, r, "oncall_http_requests_total", map[string]string{"method": "GET", "path": "/health", "status": "200"}))
	assert.Equal(t, 1.0, value(t, r, "oncall_http_requests_total", map[string]string{"method": "POST", "path": "/api/v1/schedules", "status": "400"}))
}

func TestRecordOptimize(t *testing.T) {
	r := NewRegistry()
	r.RecordOptimize(OptimizeRun{
		Mode: "graded", Status: "success", Duration: time.Second, Trials: 100, Score: 1.5,
		Skipped: map[string]int{"senior": 2},
	})
	r.RecordOptimize(OptimizeRun{Mode: "simple", Status: "infeasible", Trials: 10, Score: 9})

	assert.Equal(t, 1.0, value(t, r, "oncall_optimize_total", map[string]string{"mode": "graded", "status": "success"}))
	assert.Equal(t, 110.0, value(t, r, "oncall_trials_total", nil))
	assert.Equal(t, 2.0, value(t, r, "oncall_skipped_slots_total", map[string]string{"grade": "senior"}))
	// 失败的生成不覆盖最近评分
	assert.Equal(t, 1.5, value(t, r, "oncall_last_score", nil))
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordRequest("GET", "/version", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "oncall_http_requests_total"))
}
