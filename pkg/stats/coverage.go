package stats

import (
	"fmt"
	"strings"

	"github.com/paiban/oncall/pkg/model"
)

// SlotPlan 每日班次需求
type SlotPlan interface {
	Days() []model.Day
	GradeQuota(dayIndex int) map[string]int
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct {
	includeFullDays bool // 是否输出已填满的日期
}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// WithFullDays 报告中包含已填满的日期
func (c *CoverageAnalyzer) WithFullDays() *CoverageAnalyzer {
	c.includeFullDays = true
	return c
}

// Analyze 分析方案相对需求的覆盖情况
func (c *CoverageAnalyzer) Analyze(plan SlotPlan, candidate *model.Candidate) *model.Coverage {
	days := plan.Days()
	filled := make([]map[string]int, len(days))
	for _, a := range candidate.Assignments {
		if a.DayIndex < 0 || a.DayIndex >= len(days) {
			continue
		}
		if filled[a.DayIndex] == nil {
			filled[a.DayIndex] = make(map[string]int)
		}
		filled[a.DayIndex][a.Grade]++
	}
	skipped := make(map[int][]model.SkippedSlot)
	for _, s := range candidate.Skipped {
		skipped[s.DayIndex] = append(skipped[s.DayIndex], s)
	}

	cov := &model.Coverage{}
	gradeRequired := make(map[string]int)
	gradeFilled := make(map[string]int)

	for _, day := range days {
		dc := model.DayCoverage{Date: day.Key(), Skipped: skipped[day.Index]}
		for grade, q := range plan.GradeQuota(day.Index) {
			f := filled[day.Index][grade]
			dc.Required += q
			dc.Filled += f
			gradeRequired[grade] += q
			gradeFilled[grade] += f
		}
		cov.RequiredSlots += dc.Required
		cov.FilledSlots += dc.Filled

		if c.includeFullDays || dc.Filled < dc.Required {
			cov.Days = append(cov.Days, dc)
		}
	}

	cov.FillRate = rate(cov.FilledSlots, cov.RequiredSlots)
	for grade, req := range gradeRequired {
		if grade == model.ImplicitGrade {
			continue
		}
		if cov.GradeFillRate == nil {
			cov.GradeFillRate = make(map[string]float64, len(gradeRequired))
		}
		cov.GradeFillRate[grade] = rate(gradeFilled[grade], req)
	}
	return cov
}

func rate(filled, required int) float64 {
	if required == 0 {
		return 100
	}
	return float64(filled) / float64(required) * 100
}

// GenerateCoverageReport 生成覆盖率报告
func (c *CoverageAnalyzer) GenerateCoverageReport(cov *model.Coverage) string {
	var b strings.Builder
	b.WriteString("=== 覆盖率分析报告 ===\n\n")

	b.WriteString("【整体覆盖情况】\n")
	fmt.Fprintf(&b, "  需求班次: %d\n", cov.RequiredSlots)
	fmt.Fprintf(&b, "  已分配班次: %d\n", cov.FilledSlots)
	fmt.Fprintf(&b, "  覆盖率: %.1f%%\n\n", cov.FillRate)

	var short []model.DayCoverage
	for _, d := range cov.Days {
		if d.Filled < d.Required {
			short = append(short, d)
		}
	}
	if len(short) > 0 {
		b.WriteString("【未填满日期】\n")
		for _, d := range short {
			fmt.Fprintf(&b, "  - %s (需要%d人，仅有%d人)\n", d.Date, d.Required, d.Filled)
			for _, s := range d.Skipped {
				if s.Grade != model.ImplicitGrade {
					fmt.Fprintf(&b, "      %s: 需要%d人，可用%d人\n", s.Grade, s.Required, s.Eligible)
				}
			}
		}
	}
	return b.String()
}
