// Package repository 提供值班结果的存取
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/oncall/pkg/model"
)

// StoredResult 保存的值班结果
type StoredResult struct {
	ID         string                `json:"schedule_id"`
	Parameters json.RawMessage       `json:"parameters"` // 原始请求参数
	Result     *model.ScheduleResult `json:"result"`
	Score      float64               `json:"score"`
	CreatedAt  time.Time             `json:"created_at"`
}

// ResultSummary 列表中的结果摘要
type ResultSummary struct {
	ID        string     `json:"schedule_id"`
	Mode      model.Mode `json:"mode"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Score     float64    `json:"score"`
	CreatedAt time.Time  `json:"created_at"`
}

// ResultStore 值班结果仓储接口
type ResultStore interface {
	Save(ctx context.Context, r *StoredResult) error
	Get(ctx context.Context, id string) (*StoredResult, error)
	List(ctx context.Context, filter ListFilter) ([]*ResultSummary, int, error)
}

// NewID 生成结果ID："Schedule" + 去掉横线的 uuid
func NewID() string {
	return "Schedule" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewStoredResult 组装待保存的结果
func NewStoredResult(params json.RawMessage, result *model.ScheduleResult) *StoredResult {
	return &StoredResult{
		ID:         NewID(),
		Parameters: params,
		Result:     result,
		Score:      result.Score,
		CreatedAt:  time.Now().UTC(),
	}
}

func summarize(r *StoredResult) *ResultSummary {
	s := &ResultSummary{ID: r.ID, Score: r.Score, CreatedAt: r.CreatedAt}
	if r.Result != nil {
		s.Mode = r.Result.Mode
		s.StartDate = r.Result.StartDate
		s.EndDate = r.Result.EndDate
	}
	return s
}

// ListFilter 列表查询过滤器
type ListFilter struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// 列表分页上限
const maxListLimit = 100

// DefaultListFilter 返回默认过滤器
func DefaultListFilter() ListFilter {
	return ListFilter{Offset: 0, Limit: 20}
}

// WithLimit 设置限制
func (f ListFilter) WithLimit(limit int) ListFilter {
	f.Limit = limit
	return f
}

// WithOffset 设置偏移
func (f ListFilter) WithOffset(offset int) ListFilter {
	f.Offset = offset
	return f
}

// normalize 修正越界的分页参数
func (f ListFilter) normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListFilter().Limit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// DB 数据库接口
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Scanner 行扫描接口
type Scanner interface {
	Scan(dest ...interface{}) error
}
