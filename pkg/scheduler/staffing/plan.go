// Package staffing 计算每天需要的值班人数及各等级配额
package staffing

import (
	"sort"
	"strings"

	"github.com/paiban/oncall/pkg/calendar"
	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
)

// Plan 人员需求计划
type Plan struct {
	days   []model.Day
	groups []string
	counts []int
	quotas []map[string]int
}

// New 创建需求计划
//
// source 为统一人数时每天相同；为按日期指定时必须与日历逐日对应。
// 等级模式下，有显式需求的日期按需求中各等级出现次数确定配额（当天人数以需求为准），
// 其余日期按各等级人数比例拆分当天人数（最大余数法，余数相同按等级顺序）。
func New(days []model.Day, source model.Staffing, grades []string, pool []model.StaffMember, requirements model.ShiftRequirements) (*Plan, error) {
	counts, err := resolveCounts(days, source)
	if err != nil {
		return nil, err
	}

	groups := grades
	if len(grades) == 0 {
		if len(requirements) > 0 {
			return nil, apperrors.InvalidInput("shift_requirements", "等级需求只能在等级模式下使用")
		}
		groups = []string{model.ImplicitGrade}
	}

	gradeSet := make(map[string]struct{}, len(grades))
	for _, g := range grades {
		if strings.TrimSpace(g) == "" {
			return nil, apperrors.InvalidInput("grades", "等级名称不能为空")
		}
		if _, dup := gradeSet[g]; dup {
			return nil, apperrors.InvalidInput("grades", "等级重复: "+g)
		}
		gradeSet[g] = struct{}{}
	}

	poolSize := make(map[string]int, len(groups))
	for _, s := range pool {
		if len(grades) == 0 {
			poolSize[model.ImplicitGrade]++
			continue
		}
		if _, ok := gradeSet[s.Grade]; !ok {
			return nil, apperrors.Newf(apperrors.CodeUnknownGrade, "人员 '%s' 的等级 '%s' 未定义", s.Name, s.Grade)
		}
		poolSize[s.Grade]++
	}

	byDate := calendar.Index(days)
	explicit := make(map[int][]string, len(requirements))
	for date, labels := range requirements {
		idx, ok := byDate[date]
		if !ok {
			return nil, apperrors.Newf(apperrors.CodeStaffingMismatch, "等级需求日期 '%s' 不在排班范围内", date)
		}
		for _, l := range labels {
			if _, ok := gradeSet[l]; !ok {
				return nil, apperrors.Newf(apperrors.CodeUnknownGrade, "日期 '%s' 的需求引用了未定义的等级 '%s'", date, l)
			}
		}
		explicit[idx] = labels
	}

	p := &Plan{
		days:   days,
		groups: groups,
		counts: counts,
		quotas: make([]map[string]int, len(days)),
	}
	for i := range days {
		if labels, ok := explicit[i]; ok {
			q := make(map[string]int, len(groups))
			for _, l := range labels {
				q[l]++
			}
			p.quotas[i] = q
			p.counts[i] = len(labels)
			continue
		}
		p.quotas[i] = split(counts[i], groups, poolSize)
	}
	return p, nil
}

func resolveCounts(days []model.Day, source model.Staffing) ([]int, error) {
	counts := make([]int, len(days))
	if source.IsUniform() {
		if source.Uniform < 0 {
			return nil, apperrors.InvalidInput("num_doctors", "每天值班人数不能为负数")
		}
		for i := range counts {
			counts[i] = source.Uniform
		}
		return counts, nil
	}

	if len(source.PerDay) != len(days) {
		return nil, apperrors.Newf(apperrors.CodeStaffingMismatch,
			"按日期指定的人数有 %d 项，排班周期有 %d 天", len(source.PerDay), len(days))
	}
	for i, d := range days {
		n, ok := source.PerDay[d.Key()]
		if !ok {
			return nil, apperrors.Newf(apperrors.CodeStaffingMismatch, "缺少日期 '%s' 的值班人数", d.Key())
		}
		if n < 0 {
			return nil, apperrors.InvalidInput("num_doctors_per_night", "日期 "+d.Key()+" 的值班人数不能为负数")
		}
		counts[i] = n
	}
	return counts, nil
}

// split 按人数比例拆分，最大余数法
func split(headcount int, groups []string, poolSize map[string]int) map[string]int {
	q := make(map[string]int, len(groups))
	if len(groups) == 1 {
		q[groups[0]] = headcount
		return q
	}

	total := 0
	for _, g := range groups {
		total += poolSize[g]
	}
	if total == 0 {
		// 没有任何人员，全部记到第一个等级，生成时会被记录为未填满
		q[groups[0]] = headcount
		return q
	}

	type share struct {
		order     int
		remainder int
	}
	shares := make([]share, len(groups))
	assigned := 0
	for i, g := range groups {
		n := headcount * poolSize[g]
		q[g] = n / total
		assigned += q[g]
		shares[i] = share{order: i, remainder: n % total}
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].remainder > shares[j].remainder
	})
	for i := 0; assigned < headcount; i++ {
		q[groups[shares[i%len(shares)].order]]++
		assigned++
	}
	return q
}

// Days 返回日历
func (p *Plan) Days() []model.Day {
	return p.days
}

// Groups 返回等级顺序；非等级模式只有隐式等级
func (p *Plan) Groups() []string {
	return p.groups
}

// GradeQuota 某天各等级配额
func (p *Plan) GradeQuota(dayIndex int) map[string]int {
	return p.quotas[dayIndex]
}

// Quota 某天某等级配额
func (p *Plan) Quota(dayIndex int, grade string) int {
	return p.quotas[dayIndex][grade]
}

// TotalSlots 周期内的总班次数
func (p *Plan) TotalSlots() int {
	total := 0
	for _, c := range p.counts {
		total += c
	}
	return total
}
