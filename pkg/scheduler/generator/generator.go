// Package generator 随机生成单次尝试的值班方案
package generator

import (
	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/staffing"
)

// Generator 值班方案生成器
// 非等级模式视为只有一个覆盖全部人员的隐式等级
type Generator struct {
	plan    *staffing.Plan
	members map[string][]model.StaffMember
	windows map[string]int
	log     *logger.OptimizerLogger
}

// New 创建生成器
func New(plan *staffing.Plan, staff []model.StaffMember) *Generator {
	g := &Generator{
		plan:    plan,
		members: make(map[string][]model.StaffMember, len(plan.Groups())),
		windows: make(map[string]int, len(plan.Groups())),
	}
	for _, grade := range plan.Groups() {
		members := model.StaffOfGrade(staff, grade)
		g.members[grade] = members
		g.windows[grade] = CooldownWindow(len(members))
	}
	return g
}

// WithLogger 设置日志器
func (g *Generator) WithLogger(l *logger.OptimizerLogger) *Generator {
	g.log = l
	return g
}

// CooldownWindow 冷却窗口大小：最近 n - ceil(n/3) 条分配记录内的人员不可再排
func CooldownWindow(n int) int {
	if n <= 0 {
		return 0
	}
	return n - (n+2)/3
}

// Generate 生成一次尝试的方案
func (g *Generator) Generate(trial int, rng Rand) model.Candidate {
	c := model.Candidate{Trial: trial}
	history := make(map[string][]string, len(g.members))

	for _, day := range g.plan.Days() {
		date := day.Key()
		for _, grade := range g.plan.Groups() {
			quota := g.plan.Quota(day.Index, grade)
			if quota == 0 {
				continue
			}

			eligible := g.eligible(grade, date, recent(history[grade], g.windows[grade]))
			if len(eligible) < quota {
				c.Skipped = append(c.Skipped, model.SkippedSlot{
					Date:     day.Date,
					DayIndex: day.Index,
					Grade:    grade,
					Required: quota,
					Eligible: len(eligible),
				})
				if g.log != nil {
					g.log.SlotSkipped(trial, date, grade, quota, len(eligible))
				}
				continue
			}

			for _, name := range sample(rng, eligible, quota) {
				c.Assignments = append(c.Assignments, model.Assignment{
					Date:     day.Date,
					DayIndex: day.Index,
					Staff:    name,
					Grade:    grade,
					Points:   day.Weight,
				})
				history[grade] = append(history[grade], name)
			}
		}
	}
	return c
}

// eligible 不在冷却中且当天可值班的人员
func (g *Generator) eligible(grade, date string, cooling map[string]struct{}) []string {
	var out []string
	for _, s := range g.members[grade] {
		if _, ok := cooling[s.Name]; ok {
			continue
		}
		if !s.IsAvailable(date) {
			continue
		}
		out = append(out, s.Name)
	}
	return out
}

func recent(history []string, window int) map[string]struct{} {
	if window <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	set := make(map[string]struct{}, len(history))
	for _, name := range history {
		set[name] = struct{}{}
	}
	return set
}

// sample 不放回抽样 k 个
func sample(rng Rand, pool []string, k int) []string {
	picked := make([]string, len(pool))
	copy(picked, pool)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(picked)-i)
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked[:k]
}
