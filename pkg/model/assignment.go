package model

import "time"

// Assignment 一次值班分配
type Assignment struct {
	Date     time.Time `json:"date"`
	DayIndex int       `json:"day_index"`
	Staff    string    `json:"staff"`
	Grade    string    `json:"grade,omitempty"`
	Points   float64   `json:"points"`
}

// SkippedSlot 某天某等级可用人数不足而未填满的班次
type SkippedSlot struct {
	Date     time.Time `json:"date"`
	DayIndex int       `json:"day_index"`
	Grade    string    `json:"grade,omitempty"`
	Required int       `json:"required"`
	Eligible int       `json:"eligible"`
}

// Candidate 一次尝试生成的完整（可能不完整）值班方案
type Candidate struct {
	Trial       int           `json:"trial"`
	Assignments []Assignment  `json:"assignments"`
	Skipped     []SkippedSlot `json:"skipped,omitempty"`
}

// Empty 没有任何分配
func (c *Candidate) Empty() bool {
	return len(c.Assignments) == 0
}

// AssignmentsOf 返回某等级的分配；ImplicitGrade 返回全部
func (c *Candidate) AssignmentsOf(grade string) []Assignment {
	if grade == ImplicitGrade {
		return c.Assignments
	}
	var out []Assignment
	for _, a := range c.Assignments {
		if a.Grade == grade {
			out = append(out, a)
		}
	}
	return out
}

// ScoreVector 方案的公平性评分
type ScoreVector struct {
	PointSpread     float64 `json:"point_spread"`
	ShiftSpread     float64 `json:"shift_spread"`
	WeekendSpread   float64 `json:"weekend_spread"`
	SpacingVariance float64 `json:"spacing_variance"`
}

// Total 第二阶段总分
func (s ScoreVector) Total() float64 {
	return s.SpacingVariance + s.ShiftSpread + s.WeekendSpread
}
