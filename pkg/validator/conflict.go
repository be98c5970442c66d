// Package validator 检查值班方案是否满足硬约束
package validator

import (
	"fmt"
	"sort"

	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/generator"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictDuplicate    ConflictType = "duplicate"    // 同一天重复排班
	ConflictAvailability ConflictType = "availability" // 不可值班日被排班
	ConflictCooldown     ConflictType = "cooldown"     // 冷却期内再次排班
	ConflictPoints       ConflictType = "points"       // 积分与当天权重不符
	ConflictGrade        ConflictType = "grade"        // 等级不符
	ConflictOverfill     ConflictType = "overfill"     // 超出当天配额
	ConflictUnknownStaff ConflictType = "unknown_staff"
)

// Conflict 冲突信息
type Conflict struct {
	Type     ConflictType `json:"type"`
	Severity string       `json:"severity"` // error/warning
	Staff    string       `json:"staff,omitempty"`
	Date     string       `json:"date"`
	Message  string       `json:"message"`
}

// QuotaPlan 每日配额
type QuotaPlan interface {
	Days() []model.Day
	Groups() []string
	GradeQuota(dayIndex int) map[string]int
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	config *DetectorConfig
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	CheckAvailability bool // 是否检查可值班日期
	CheckCooldown     bool // 是否检查冷却窗口
	CheckPoints       bool // 是否检查积分
	CheckQuota        bool // 是否检查配额
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		CheckAvailability: true,
		CheckCooldown:     true,
		CheckPoints:       true,
		CheckQuota:        true,
	}
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(config *DetectorConfig) *ConflictDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &ConflictDetector{config: config}
}

// DetectAll 检测所有冲突，结果按日期排序
func (d *ConflictDetector) DetectAll(c *model.Candidate, staff []model.StaffMember, plan QuotaPlan) []Conflict {
	var conflicts []Conflict

	members := make(map[string]model.StaffMember, len(staff))
	for _, s := range staff {
		members[s.Name] = s
	}

	conflicts = append(conflicts, d.detectDuplicates(c)...)
	conflicts = append(conflicts, d.detectStaffViolations(c, members, plan)...)
	if d.config.CheckCooldown {
		conflicts = append(conflicts, d.detectCooldownViolations(c, staff, plan)...)
	}
	if d.config.CheckQuota {
		conflicts = append(conflicts, d.detectOverfill(c, plan)...)
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Date < conflicts[j].Date
	})
	return conflicts
}

// detectDuplicates 检测同一天重复排班
func (d *ConflictDetector) detectDuplicates(c *model.Candidate) []Conflict {
	var conflicts []Conflict

	seen := make(map[int]map[string]bool)
	for _, a := range c.Assignments {
		if seen[a.DayIndex] == nil {
			seen[a.DayIndex] = make(map[string]bool)
		}
		if seen[a.DayIndex][a.Staff] {
			date := model.FormatDate(a.Date)
			conflicts = append(conflicts, Conflict{
				Type:     ConflictDuplicate,
				Severity: "error",
				Staff:    a.Staff,
				Date:     date,
				Message:  fmt.Sprintf("%s 在 %s 被重复排班", a.Staff, date),
			})
		}
		seen[a.DayIndex][a.Staff] = true
	}

	return conflicts
}

// detectStaffViolations 检测人员、可值班日期、积分和等级
func (d *ConflictDetector) detectStaffViolations(c *model.Candidate, members map[string]model.StaffMember, plan QuotaPlan) []Conflict {
	var conflicts []Conflict
	days := plan.Days()

	for _, a := range c.Assignments {
		date := model.FormatDate(a.Date)
		s, ok := members[a.Staff]
		if !ok {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictUnknownStaff,
				Severity: "error",
				Staff:    a.Staff,
				Date:     date,
				Message:  fmt.Sprintf("%s 不在值班人员名单中", a.Staff),
			})
			continue
		}

		if d.config.CheckAvailability && !s.IsAvailable(date) {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictAvailability,
				Severity: "error",
				Staff:    a.Staff,
				Date:     date,
				Message:  fmt.Sprintf("%s 在 %s 不可值班", a.Staff, date),
			})
		}

		if a.Grade != model.ImplicitGrade && a.Grade != s.Grade {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictGrade,
				Severity: "error",
				Staff:    a.Staff,
				Date:     date,
				Message:  fmt.Sprintf("%s 的等级为 %s，却被排在 %s 班次", a.Staff, s.Grade, a.Grade),
			})
		}

		if d.config.CheckPoints && a.DayIndex >= 0 && a.DayIndex < len(days) && days[a.DayIndex].Weight != a.Points {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictPoints,
				Severity: "error",
				Staff:    a.Staff,
				Date:     date,
				Message:  fmt.Sprintf("积分 %.1f 与当天权重 %.1f 不符", a.Points, days[a.DayIndex].Weight),
			})
		}
	}

	return conflicts
}

// detectCooldownViolations 按生成顺序重放每个等级的冷却窗口
func (d *ConflictDetector) detectCooldownViolations(c *model.Candidate, staff []model.StaffMember, plan QuotaPlan) []Conflict {
	var conflicts []Conflict

	windows := make(map[string]int)
	for _, g := range plan.Groups() {
		windows[g] = generator.CooldownWindow(len(model.StaffOfGrade(staff, g)))
	}

	history := make(map[string][]string)
	// 同一天内的分配不受彼此冷却影响
	var today []model.Assignment
	flush := func() {
		for _, a := range today {
			history[a.Grade] = append(history[a.Grade], a.Staff)
		}
		today = today[:0]
	}

	currentDay := -1
	currentGrade := ""
	for _, a := range c.Assignments {
		if a.DayIndex != currentDay || a.Grade != currentGrade {
			flush()
			currentDay, currentGrade = a.DayIndex, a.Grade
		}

		h := history[a.Grade]
		if w := windows[a.Grade]; w > 0 && len(h) > 0 {
			if len(h) > w {
				h = h[len(h)-w:]
			}
			for _, name := range h {
				if name == a.Staff {
					date := model.FormatDate(a.Date)
					conflicts = append(conflicts, Conflict{
						Type:     ConflictCooldown,
						Severity: "warning",
						Staff:    a.Staff,
						Date:     date,
						Message:  fmt.Sprintf("%s 在最近 %d 次值班内再次被排班", a.Staff, w),
					})
					break
				}
			}
		}
		today = append(today, a)
	}

	return conflicts
}

// detectOverfill 检测超出当天配额
func (d *ConflictDetector) detectOverfill(c *model.Candidate, plan QuotaPlan) []Conflict {
	var conflicts []Conflict
	days := plan.Days()

	type slot struct {
		day   int
		grade string
	}
	counts := make(map[slot]int)
	for _, a := range c.Assignments {
		counts[slot{a.DayIndex, a.Grade}]++
	}

	for s, n := range counts {
		if s.day < 0 || s.day >= len(days) {
			continue
		}
		if quota := plan.GradeQuota(s.day)[s.grade]; n > quota {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictOverfill,
				Severity: "error",
				Date:     days[s.day].Key(),
				Message:  fmt.Sprintf("排班 %d 人，超过配额 %d 人", n, quota),
			})
		}
	}

	return conflicts
}

// HasErrors 是否存在 error 级别的冲突
func HasErrors(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Severity == "error" {
			return true
		}
	}
	return false
}
