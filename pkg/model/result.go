package model

import (
	"encoding/json"
	"fmt"
)

// ScheduleEntry 某天的一条值班记录，序列化为 [姓名, 积分]
type ScheduleEntry struct {
	Staff  string
	Points float64
}

// MarshalJSON 序列化为二元数组
func (e ScheduleEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.Staff, e.Points})
}

// UnmarshalJSON 从二元数组反序列化
func (e *ScheduleEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("schedule entry: expected 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Staff); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Points)
}

// GradeScore 某等级胜出方案的评分
type GradeScore struct {
	ScoreVector
	Score float64 `json:"score"`
}

// DayCoverage 单日覆盖情况
type DayCoverage struct {
	Date     string        `json:"date"`
	Required int           `json:"required"`
	Filled   int           `json:"filled"`
	Skipped  []SkippedSlot `json:"skipped,omitempty"`
}

// Coverage 覆盖率报告
type Coverage struct {
	RequiredSlots int           `json:"required_slots"`
	FilledSlots   int           `json:"filled_slots"`
	FillRate      float64       `json:"fill_rate"` // 0-100
	Days          []DayCoverage `json:"days,omitempty"`

	// 等级模式下各等级的填充率
	GradeFillRate map[string]float64 `json:"grade_fill_rate,omitempty"`
}

// SearchStats 搜索过程统计
type SearchStats struct {
	Trials      int     `json:"trials"`
	Feasible    int     `json:"feasible"` // 至少有一个分配的尝试数
	Stage1      int     `json:"stage1_retained"`
	Stage2      int     `json:"stage2_retained"`
	WinnerTrial int     `json:"winner_trial"`
	Seed        *uint64 `json:"seed,omitempty"`
}

// ScheduleResult 最终值班表
type ScheduleResult struct {
	Mode      Mode   `json:"mode"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	// 非等级模式：日期 -> 值班人员
	Schedule map[string][]ScheduleEntry `json:"schedule,omitempty"`
	// 等级模式：日期 -> 等级 -> 值班人员
	GradedSchedule map[string]map[string][]ScheduleEntry `json:"graded_schedule,omitempty"`

	Points           map[string]float64 `json:"points"`
	NumShifts        map[string]int     `json:"num_shifts"`
	NumWeekendShifts map[string]int     `json:"num_weekend_shifts"`

	// 等级模式下按等级统计
	GradeShifts        map[string]map[string]int `json:"grade_shifts,omitempty"`
	GradeWeekendShifts map[string]map[string]int `json:"grade_weekend_shifts,omitempty"`

	ShiftDifference        int     `json:"shift_difference"`
	WeekendShiftDifference int     `json:"weekend_shift_difference"`
	Score                  float64 `json:"score"`

	GradeScores map[string]GradeScore `json:"grade_scores,omitempty"`
	Coverage    *Coverage             `json:"coverage,omitempty"`
	Search      SearchStats           `json:"search"`
}

// TotalAssignments 返回分配总数
func (r *ScheduleResult) TotalAssignments() int {
	n := 0
	for _, c := range r.NumShifts {
		n += c
	}
	return n
}

// Entries 返回某天的全部值班记录，等级模式按等级顺序展开
func (r *ScheduleResult) Entries(date string, grades []string) []ScheduleEntry {
	if r.Mode != ModeGraded {
		return r.Schedule[date]
	}
	var out []ScheduleEntry
	for _, g := range grades {
		out = append(out, r.GradedSchedule[date][g]...)
	}
	return out
}
