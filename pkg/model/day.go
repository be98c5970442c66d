package model

import "time"

// 各类日期的积分
const (
	WeightWeekday  = 1.0
	WeightSaturday = 1.5
	WeightSunday   = 2.0
	WeightHoliday  = 2.0
)

// Day 排班周期中的一天
type Day struct {
	Date    time.Time `json:"date"`
	Index   int       `json:"index"` // 在周期中的序号，从0开始
	Weight  float64   `json:"weight"`
	Holiday bool      `json:"holiday,omitempty"`
}

// Key 返回日期字符串
func (d Day) Key() string {
	return FormatDate(d.Date)
}

// IsWeekend 周六或周日
func (d Day) IsWeekend() bool {
	return IsWeekend(d.Date)
}

// IsWeekend 判断是否是周末
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
