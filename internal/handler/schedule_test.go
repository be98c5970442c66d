package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/oncall/internal/metrics"
	"github.com/paiban/oncall/internal/repository"
	"github.com/paiban/oncall/pkg/model"
)

type testServer struct {
	router http.Handler
	store  *repository.MemoryResultStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryResultStore()
	reg := metrics.NewRegistry()
	h, err := NewScheduleHandler(ScheduleHandlerConfig{
		Store:        store,
		Defaults:     Defaults{Trials: 50, MaxTrials: 1000, Workers: 2},
		MaxBodyBytes: 1 << 20,
		Metrics:      reg,
	})
	require.NoError(t, err)

	return &testServer{
		store: store,
		router: NewRouter(RouterConfig{
			Schedules:   h,
			Metrics:     reg,
			MetricsPath: "/metrics",
			CORS:        true,
			Build:       BuildInfo{Version: "test"},
		}),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGenerateAndGet(t *testing.T) {
	s := newTestServer(t)
	seed := uint64(3)

	rec := s.do(t, http.MethodPost, "/api/v1/schedules", GenerateRequest{
		Staff:      []string{"A", "B", "C", "D"},
		StartDate:  "2024-01-02",
		EndDate:    "2024-01-08",
		NumDoctors: intPtr(1),
		Find:       30,
		Seed:       &seed,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.ScheduleID, "Schedule"))
	require.NotNil(t, resp.ScheduleResult)
	assert.Equal(t, model.ModeSimple, resp.Mode)
	assert.Len(t, resp.Schedule, 7)
	assert.Equal(t, 7, resp.TotalAssignments())
	require.NotNil(t, resp.Search.Seed)
	assert.Equal(t, seed, *resp.Search.Seed)

	for _, path := range []string{"/api/v1/schedules/" + resp.ScheduleID, "/result/" + resp.ScheduleID} {
		rec = s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var stored repository.StoredResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
		assert.Equal(t, resp.ScheduleID, stored.ID)
		assert.Equal(t, resp.Schedule, stored.Result.Schedule)
		assert.Contains(t, string(stored.Parameters), `"find":30`)
	}
}

func TestGenerate_LegacyRoute(t *testing.T) {
	s := newTestServer(t)
	body := `{
		"doctor_names": "A,B,C,D",
		"start_date": "2024-01-02",
		"end_date": "2024-01-05",
		"same_num_doctors": "N",
		"num_doctors_per_night": {"2024-01-02": 1, "2024-01-03": 1, "2024-01-04": 2, "2024-01-05": 1},
		"holiday_days": "2024-01-04",
		"find": 20
	}`

	rec := s.do(t, http.MethodPost, "/schedule", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.TotalAssignments())
	for _, e := range resp.Schedule["2024-01-04"] {
		assert.Equal(t, 2.0, e.Points)
	}
}

func TestGenerate_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"非法JSON", `{"staff": [`, http.StatusBadRequest, "INVALID_INPUT"},
		{"缺少日期", GenerateRequest{Staff: []string{"A"}, NumDoctors: intPtr(1)}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"结束早于开始", GenerateRequest{
			Staff: []string{"A"}, StartDate: "2024-01-05", EndDate: "2024-01-01", NumDoctors: intPtr(1),
		}, http.StatusBadRequest, "INVALID_TIME_RANGE"},
		{"每日人数与日期不符", GenerateRequest{
			Staff: []string{"A"}, StartDate: "2024-01-01", EndDate: "2024-01-02",
			NumDoctorsPerNight: map[string]int{"2024-01-01": 1},
		}, http.StatusBadRequest, "STAFFING_MISMATCH"},
		{"无可行方案", GenerateRequest{
			Staff: []string{"A"}, StartDate: "2024-01-01", EndDate: "2024-01-02", NumDoctors: intPtr(1),
			Unavailable: map[string][]string{"A": {"2024-01-01", "2024-01-02"}},
		}, http.StatusUnprocessableEntity, "NO_FEASIBLE_SOLUTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/schedules", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decodeError(t, rec)
			assert.True(t, body.Error)
			assert.Equal(t, tt.code, body.Code)
		})
	}

	_, total, err := s.store.List(context.Background(), repository.DefaultListFilter())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGet_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/schedules/Schedulemissing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestList(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/api/v1/schedules", GenerateRequest{
			Staff: []string{"A", "B"}, StartDate: "2024-01-01", EndDate: "2024-01-03", NumDoctors: intPtr(1), Find: 5,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/schedules?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Total)
	assert.Len(t, list.Results, 2)

	rec = s.do(t, http.MethodGet, "/api/v1/schedules?offset=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSystemEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(t, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)

	s.do(t, http.MethodPost, "/api/v1/schedules", GenerateRequest{
		Staff: []string{"A", "B"}, StartDate: "2024-01-01", EndDate: "2024-01-02", NumDoctors: intPtr(1), Find: 3,
	})
	rec = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "oncall_optimize_total")

	rec = s.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth_Unavailable(t *testing.T) {
	h, err := NewScheduleHandler(ScheduleHandlerConfig{Store: repository.NewMemoryResultStore()})
	require.NoError(t, err)
	router := NewRouter(RouterConfig{
		Schedules: h,
		Health:    func(*http.Request) error { return errors.New("db down") },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
