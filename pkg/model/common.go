// Package model 定义值班优化器的核心数据模型
package model

import (
	"strings"
	"time"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// Mode 排班模式
type Mode string

const (
	ModeSimple Mode = "simple" // 不区分等级
	ModeGraded Mode = "graded" // 按等级配额
)

// ImplicitGrade 非等级模式下覆盖全部人员的隐式等级
const ImplicitGrade = ""

// ParseDate 解析 YYYY-MM-DD 日期
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate 格式化日期
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange 日期范围（闭区间）
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid 结束日期不早于开始日期
func (r DateRange) Valid() bool {
	return !r.End.Before(r.Start)
}

// Days 返回范围内的天数
func (r DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}
