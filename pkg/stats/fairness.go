// Package stats 提供值班方案的公平性评分与覆盖率统计
package stats

import (
	"sort"

	"github.com/paiban/oncall/pkg/model"
)

// StaffStat 单个人员的统计
type StaffStat struct {
	Name          string  `json:"name"`
	Grade         string  `json:"grade,omitempty"`
	Points        float64 `json:"points"`
	Shifts        int     `json:"shifts"`
	WeekendShifts int     `json:"weekend_shifts"`
	Days          []int   `json:"-"` // 按日期先后排列的值班日（几号）

	order []int // 值班日在周期中的序号，与 Days 对应
}

// Collect 统计给定人员的积分、班次数、周末班次数
// 返回顺序与 staff 相同，没有分配的人员计为 0
func Collect(assignments []model.Assignment, staff []model.StaffMember) []StaffStat {
	stats := make([]StaffStat, len(staff))
	index := make(map[string]int, len(staff))
	for i, s := range staff {
		stats[i] = StaffStat{Name: s.Name, Grade: s.Grade}
		index[s.Name] = i
	}

	for _, a := range assignments {
		i, ok := index[a.Staff]
		if !ok {
			continue
		}
		st := &stats[i]
		st.Points += a.Points
		st.Shifts++
		if model.IsWeekend(a.Date) {
			st.WeekendShifts++
		}
		st.Days = append(st.Days, a.Date.Day())
		st.order = append(st.order, a.DayIndex)
	}

	for i := range stats {
		sort.Stable(byOrder{&stats[i]})
	}
	return stats
}

// byOrder 按周期序号排列值班日
type byOrder struct{ st *StaffStat }

func (b byOrder) Len() int           { return len(b.st.order) }
func (b byOrder) Less(i, j int) bool { return b.st.order[i] < b.st.order[j] }
func (b byOrder) Swap(i, j int) {
	b.st.order[i], b.st.order[j] = b.st.order[j], b.st.order[i]
	b.st.Days[i], b.st.Days[j] = b.st.Days[j], b.st.Days[i]
}

// PointSpread 第一阶段评分：最高积分与最低积分之差
func PointSpread(c *model.Candidate, staff []model.StaffMember) float64 {
	stats := Collect(c.Assignments, staff)
	points := make([]float64, len(stats))
	for i, st := range stats {
		points[i] = st.Points
	}
	max, min := calculateRange(points)
	return max - min
}

// Stage2 第二阶段评分：班次数极差、周末班次数极差、间隔方差之和
// 没有班次（或没有周末班次）的人员按 0 计入极差
func Stage2(c *model.Candidate, staff []model.StaffMember) model.ScoreVector {
	stats := Collect(c.Assignments, staff)

	points := make([]float64, len(stats))
	shifts := make([]float64, len(stats))
	weekends := make([]float64, len(stats))
	spacing := 0.0
	for i, st := range stats {
		points[i] = st.Points
		shifts[i] = float64(st.Shifts)
		weekends[i] = float64(st.WeekendShifts)
		spacing += SpacingVariance(st.Days)
	}

	pMax, pMin := calculateRange(points)
	sMax, sMin := calculateRange(shifts)
	wMax, wMin := calculateRange(weekends)
	return model.ScoreVector{
		PointSpread:     pMax - pMin,
		ShiftSpread:     sMax - sMin,
		WeekendSpread:   wMax - wMin,
		SpacingVariance: spacing,
	}
}

// SpacingVariance 相邻值班日间隔的总体方差，少于 2 次值班返回 0
// days 为按日期先后排列的几号，跨月时间隔按几号直接相减（可能为负）
func SpacingVariance(days []int) float64 {
	if len(days) < 2 {
		return 0
	}
	gaps := make([]float64, len(days)-1)
	for i := 1; i < len(days); i++ {
		gaps[i-1] = float64(days[i] - days[i-1])
	}
	return calculateVariance(gaps, calculateMean(gaps))
}

// calculateMean 计算平均值
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance 计算方差
func calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// calculateRange 计算极值
func calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}
