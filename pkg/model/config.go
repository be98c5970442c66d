package model

import "time"

// Staffing 每日值班人数来源：统一人数或按日期指定
type Staffing struct {
	Uniform int            `json:"uniform,omitempty"`
	PerDay  map[string]int `json:"per_day,omitempty"`
}

// UniformStaffing 每天相同人数
func UniformStaffing(n int) Staffing {
	return Staffing{Uniform: n}
}

// PerDayStaffing 按日期指定人数
func PerDayStaffing(counts map[string]int) Staffing {
	return Staffing{PerDay: counts}
}

// IsUniform 是否为统一人数
func (s Staffing) IsUniform() bool {
	return s.PerDay == nil
}

// ShiftRequirements 日期 -> 等级需求（可重复，重复表示需要多名该等级人员）
type ShiftRequirements map[string][]string

// Config 一次排班请求的完整配置，生成后不再修改
type Config struct {
	Staff     []StaffMember `json:"staff"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Holidays  []time.Time   `json:"holidays,omitempty"`
	Staffing  Staffing      `json:"staffing"`
	Trials    int           `json:"trials"`

	// 等级模式
	Grades       []string          `json:"grades,omitempty"`
	Requirements ShiftRequirements `json:"requirements,omitempty"`

	// 随机种子，nil 时使用系统熵
	Seed *uint64 `json:"seed,omitempty"`
	// 并行度，<=0 使用 GOMAXPROCS
	Workers int `json:"workers,omitempty"`
}

// Graded 是否为等级模式
func (c *Config) Graded() bool {
	return len(c.Grades) > 0
}

// Mode 返回排班模式
func (c *Config) Mode() Mode {
	if c.Graded() {
		return ModeGraded
	}
	return ModeSimple
}

// GroupNames 返回参与筛选的等级列表；非等级模式只有一个隐式等级
func (c *Config) GroupNames() []string {
	if c.Graded() {
		return c.Grades
	}
	return []string{ImplicitGrade}
}

// Range 返回日期范围
func (c *Config) Range() DateRange {
	return DateRange{Start: c.StartDate, End: c.EndDate}
}
