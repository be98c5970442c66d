package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/paiban/oncall/pkg/errors"
)

// PostgresResultRepository 基于 PostgreSQL 的结果仓储
type PostgresResultRepository struct {
	db DB
}

// NewPostgresResultRepository 创建结果仓储
func NewPostgresResultRepository(db DB) *PostgresResultRepository {
	return &PostgresResultRepository{db: db}
}

// Save 保存结果
func (r *PostgresResultRepository) Save(ctx context.Context, res *StoredResult) error {
	resultJSON, err := json.Marshal(res.Result)
	if err != nil {
		return fmt.Errorf("序列化值班结果失败: %w", err)
	}
	params := res.Parameters
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	query := `
		INSERT INTO schedule_results (id, parameters, result, score, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, res.ID, []byte(params), resultJSON, res.Score, res.CreatedAt); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存值班结果失败")
	}
	return nil
}

// Get 根据ID获取结果
func (r *PostgresResultRepository) Get(ctx context.Context, id string) (*StoredResult, error) {
	query := `
		SELECT id, parameters, result, score, created_at
		FROM schedule_results
		WHERE id = $1
	`
	res, err := scanResult(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("值班表", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询值班结果失败")
	}
	return res, nil
}

// List 按创建时间倒序列出结果摘要
func (r *PostgresResultRepository) List(ctx context.Context, filter ListFilter) ([]*ResultSummary, int, error) {
	filter = filter.normalize()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedule_results`).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "统计值班结果失败")
	}

	query := `
		SELECT id, COALESCE(result->>'mode', ''), COALESCE(result->>'start_date', ''),
			COALESCE(result->>'end_date', ''), score, created_at
		FROM schedule_results
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询值班结果失败")
	}
	defer rows.Close()

	var list []*ResultSummary
	for rows.Next() {
		s := &ResultSummary{}
		if err := rows.Scan(&s.ID, &s.Mode, &s.StartDate, &s.EndDate, &s.Score, &s.CreatedAt); err != nil {
			return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "读取值班结果失败")
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "读取值班结果失败")
	}
	return list, total, nil
}

func scanResult(row Scanner) (*StoredResult, error) {
	res := &StoredResult{}
	var params, resultJSON []byte
	if err := row.Scan(&res.ID, &params, &resultJSON, &res.Score, &res.CreatedAt); err != nil {
		return nil, err
	}
	res.Parameters = json.RawMessage(params)
	if err := json.Unmarshal(resultJSON, &res.Result); err != nil {
		return nil, fmt.Errorf("解析值班结果失败: %w", err)
	}
	return res, nil
}
