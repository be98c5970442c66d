package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/paiban/oncall/pkg/model"
)

// ParseHolidays 解析节假日列表
// 支持 YYYY-MM-DD 日期和 RRULE 规则（如 FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25），
// RRULE 只展开 [start, end] 内的日期。结果去重并排序。
func ParseHolidays(entries []string, start, end time.Time) ([]time.Time, error) {
	start = truncate(start)
	end = truncate(end)

	seen := make(map[string]struct{})
	var out []time.Time
	add := func(t time.Time) {
		t = truncate(t)
		key := model.FormatDate(t)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}

		if !isRule(entry) {
			d, err := model.ParseDate(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid holiday %q: %w", entry, err)
			}
			add(d)
			continue
		}

		if end.Before(start) {
			continue
		}
		rule, err := rrule.StrToRRule(strings.TrimPrefix(entry, "RRULE:"))
		if err != nil {
			return nil, fmt.Errorf("invalid holiday rule %q: %w", entry, err)
		}
		rule.DTStart(start)
		for _, occ := range rule.Between(start, end.Add(24*time.Hour-time.Nanosecond), true) {
			add(occ)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// SplitList 拆分逗号分隔的列表，RRULE 中的分号不受影响
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isRule(entry string) bool {
	upper := strings.ToUpper(entry)
	return strings.HasPrefix(upper, "RRULE:") || strings.Contains(upper, "FREQ=")
}
