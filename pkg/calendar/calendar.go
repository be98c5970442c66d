// Package calendar 生成排班周期的日期序列及每日积分
package calendar

import (
	"time"

	"github.com/paiban/oncall/pkg/model"
)

// Build 生成 [start, end] 闭区间内的日期序列
// end 早于 start 时返回空序列
func Build(start, end time.Time, holidays []time.Time) []model.Day {
	start = truncate(start)
	end = truncate(end)
	if end.Before(start) {
		return []model.Day{}
	}

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[model.FormatDate(h)] = struct{}{}
	}

	days := make([]model.Day, 0, int(end.Sub(start).Hours()/24)+1)
	for d, i := start, 0; !d.After(end); d, i = d.AddDate(0, 0, 1), i+1 {
		_, holiday := holidaySet[model.FormatDate(d)]
		days = append(days, model.Day{
			Date:    d,
			Index:   i,
			Weight:  Weight(d, holiday),
			Holiday: holiday,
		})
	}
	return days
}

// Weight 计算某天的积分，节假日优先于周六
func Weight(d time.Time, holiday bool) float64 {
	switch {
	case holiday:
		return model.WeightHoliday
	case d.Weekday() == time.Sunday:
		return model.WeightSunday
	case d.Weekday() == time.Saturday:
		return model.WeightSaturday
	default:
		return model.WeightWeekday
	}
}

// TotalWeight 周期内总积分
func TotalWeight(days []model.Day) float64 {
	total := 0.0
	for _, d := range days {
		total += d.Weight
	}
	return total
}

// Index 日期字符串 -> 序号
func Index(days []model.Day) map[string]int {
	idx := make(map[string]int, len(days))
	for _, d := range days {
		idx[d.Key()] = d.Index
	}
	return idx
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
