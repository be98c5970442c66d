// Package handler 提供HTTP请求处理器
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/paiban/oncall/internal/metrics"
	"github.com/paiban/oncall/internal/repository"
	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler"
)

// ScheduleHandler 值班表处理器
type ScheduleHandler struct {
	store        repository.ResultStore
	validator    *RequestValidator
	defaults     Defaults
	timeout      time.Duration
	maxBodyBytes int64
	metrics      *metrics.Registry
}

// ScheduleHandlerConfig 处理器配置
type ScheduleHandlerConfig struct {
	Store        repository.ResultStore
	Defaults     Defaults
	Timeout      time.Duration // 单次生成超时，0 表示不限制
	MaxBodyBytes int64
	Metrics      *metrics.Registry
}

// NewScheduleHandler 创建值班表处理器
func NewScheduleHandler(cfg ScheduleHandlerConfig) (*ScheduleHandler, error) {
	v, err := NewRequestValidator()
	if err != nil {
		return nil, err
	}
	if cfg.Defaults.Trials <= 0 {
		cfg.Defaults.Trials = 1000
	}
	return &ScheduleHandler{
		store:        cfg.Store,
		validator:    v,
		defaults:     cfg.Defaults,
		timeout:      cfg.Timeout,
		maxBodyBytes: cfg.MaxBodyBytes,
		metrics:      cfg.Metrics,
	}, nil
}

// GenerateResponse 值班表生成响应
type GenerateResponse struct {
	ScheduleID string `json:"schedule_id"`
	*model.ScheduleResult
}

// ListResponse 结果列表响应
type ListResponse struct {
	Total   int                         `json:"total"`
	Results []*repository.ResultSummary `json:"results"`
}

// Generate 生成值班表并保存
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		respondError(w, r, apperrors.Wrap(err, apperrors.CodeInvalidInput, "读取请求失败"))
		return
	}

	var req GenerateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		respondError(w, r, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		respondError(w, r, err)
		return
	}

	cfg, err := req.ToConfig(h.defaults)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := scheduler.Optimize(ctx, cfg)
	h.record(cfg, result, err, time.Since(start))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var params bytes.Buffer
	if err := json.Compact(&params, raw); err != nil {
		params.Reset()
		params.WriteString("{}")
	}
	stored := repository.NewStoredResult(params.Bytes(), result)
	if err := h.store.Save(r.Context(), stored); err != nil {
		respondError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("schedule_id", stored.ID).
		Str("mode", string(result.Mode)).
		Float64("score", result.Score).
		Msg("值班表已保存")

	respondJSON(w, http.StatusOK, GenerateResponse{ScheduleID: stored.ID, ScheduleResult: result})
}

// Get 根据ID获取已保存的值班表
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stored, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stored)
}

// List 列出最近保存的值班表
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()
	query := r.URL.Query()
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, r, apperrors.InvalidInput("limit", "必须为整数"))
			return
		}
		filter = filter.WithLimit(n)
	}
	if v := query.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, r, apperrors.InvalidInput("offset", "必须为整数"))
			return
		}
		filter = filter.WithOffset(n)
	}

	results, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if results == nil {
		results = []*repository.ResultSummary{}
	}
	respondJSON(w, http.StatusOK, ListResponse{Total: total, Results: results})
}

func (h *ScheduleHandler) record(cfg *model.Config, result *model.ScheduleResult, err error, d time.Duration) {
	if h.metrics == nil {
		return
	}
	run := metrics.OptimizeRun{
		Mode:     string(cfg.Mode()),
		Status:   optimizeStatus(err),
		Duration: d,
		Trials:   cfg.Trials,
	}
	if result != nil {
		run.Score = result.Score
		if result.Coverage != nil {
			run.Skipped = make(map[string]int)
			for _, day := range result.Coverage.Days {
				for _, s := range day.Skipped {
					run.Skipped[s.Grade] += s.Required
				}
			}
		}
	}
	h.metrics.RecordOptimize(run)
}

func optimizeStatus(err error) string {
	switch apperrors.GetCode(err) {
	case apperrors.CodeNoFeasibleSolution:
		return "infeasible"
	case apperrors.CodeTimeout, apperrors.CodeCanceled:
		return "canceled"
	case apperrors.CodeInvalidInput, apperrors.CodeValidationFail, apperrors.CodeInvalidTimeRange,
		apperrors.CodeUnknownGrade, apperrors.CodeStaffingMismatch:
		return "invalid"
	}
	if err != nil {
		return "error"
	}
	return "success"
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !apperrors.As(err, &appErr) {
		appErr = apperrors.Wrap(err, apperrors.CodeInternal, "服务器内部错误")
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("服务器内部错误")
	}

	respondJSON(w, appErr.HTTPStatus, map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
		"fields":  appErr.Fields,
	})
}
