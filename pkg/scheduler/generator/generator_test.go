package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/oncall/pkg/calendar"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/staffing"
)

// zeroRand 总是选择第一个候选人
type zeroRand struct{}

func (zeroRand) IntN(int) int { return 0 }

func buildGenerator(t *testing.T, start, end string, source model.Staffing, grades []string, staff []model.StaffMember, req model.ShiftRequirements) *Generator {
	t.Helper()
	s, err := model.ParseDate(start)
	require.NoError(t, err)
	e, err := model.ParseDate(end)
	require.NoError(t, err)

	plan, err := staffing.New(calendar.Build(s, e, nil), source, grades, staff, req)
	require.NoError(t, err)
	return New(plan, staff)
}

func abc() []model.StaffMember {
	return []model.StaffMember{
		model.NewStaffMember("A", ""),
		model.NewStaffMember("B", ""),
		model.NewStaffMember("C", ""),
	}
}

func names(c model.Candidate) []string {
	out := make([]string, len(c.Assignments))
	for i, a := range c.Assignments {
		out[i] = a.Staff
	}
	return out
}

func TestCooldownWindow(t *testing.T) {
	cases := map[int]int{0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 6: 4, 9: 6, 10: 6}
	for n, want := range cases {
		assert.Equal(t, want, CooldownWindow(n), "n=%d", n)
	}
}

func TestGenerate_RotationUnderCooldown(t *testing.T) {
	g := buildGenerator(t, "2024-01-01", "2024-01-07", model.UniformStaffing(1), nil, abc(), nil)

	c := g.Generate(0, zeroRand{})
	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C", "A"}, names(c))
	assert.Empty(t, c.Skipped)

	// 积分等于当天权重
	assert.Equal(t, 1.5, c.Assignments[5].Points)
	assert.Equal(t, 2.0, c.Assignments[6].Points)
}

func TestGenerate_Availability(t *testing.T) {
	staff := abc()
	staff[0] = model.NewStaffMember("A", "", "2024-01-01", "2024-01-04")

	g := buildGenerator(t, "2024-01-01", "2024-01-07", model.UniformStaffing(1), nil, staff, nil)
	c := g.Generate(0, zeroRand{})

	for _, a := range c.Assignments {
		if a.Staff == "A" {
			assert.NotContains(t, []string{"2024-01-01", "2024-01-04"}, model.FormatDate(a.Date))
		}
	}
	assert.Equal(t, "B", c.Assignments[0].Staff)
}

func TestGenerate_SkipsWhenTooFewEligible(t *testing.T) {
	// 3 人每天 2 人，冷却窗口 2 条记录，第二天只剩 1 人可排
	g := buildGenerator(t, "2024-01-01", "2024-01-04", model.UniformStaffing(2), nil, abc(), nil)
	c := g.Generate(3, zeroRand{})

	require.NotEmpty(t, c.Skipped)
	skip := c.Skipped[0]
	assert.Equal(t, 1, skip.DayIndex)
	assert.Equal(t, 2, skip.Required)
	assert.Equal(t, 1, skip.Eligible)
	assert.Equal(t, 3, c.Trial)

	// 跳过的日期不产生任何分配
	for _, a := range c.Assignments {
		assert.NotEqual(t, 1, a.DayIndex)
	}
}

func TestGenerate_NoSameDayDuplicates(t *testing.T) {
	staff := make([]model.StaffMember, 0, 9)
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"} {
		staff = append(staff, model.NewStaffMember(n, ""))
	}
	g := buildGenerator(t, "2024-01-01", "2024-01-31", model.UniformStaffing(3), nil, staff, nil)

	for trial := 0; trial < 20; trial++ {
		c := g.Generate(trial, NewRand(42, trial))
		seen := map[int]map[string]bool{}
		for _, a := range c.Assignments {
			if seen[a.DayIndex] == nil {
				seen[a.DayIndex] = map[string]bool{}
			}
			assert.False(t, seen[a.DayIndex][a.Staff], "duplicate %s on day %d", a.Staff, a.DayIndex)
			seen[a.DayIndex][a.Staff] = true
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	staff := append(abc(), model.NewStaffMember("D", ""), model.NewStaffMember("E", ""))
	g := buildGenerator(t, "2024-01-01", "2024-01-31", model.UniformStaffing(1), nil, staff, nil)

	first := g.Generate(7, NewRand(99, 7))
	second := g.Generate(7, NewRand(99, 7))
	assert.Equal(t, first, second)
}

func TestGenerate_GradedRequirement(t *testing.T) {
	staff := []model.StaffMember{
		model.NewStaffMember("j1", "junior"),
		model.NewStaffMember("j2", "junior"),
		model.NewStaffMember("s1", "senior"),
	}
	req := model.ShiftRequirements{"2024-01-03": {"senior", "junior"}}
	g := buildGenerator(t, "2024-01-01", "2024-01-07", model.UniformStaffing(1),
		[]string{"junior", "senior"}, staff, req)

	for trial := 0; trial < 10; trial++ {
		c := g.Generate(trial, NewRand(1, trial))
		var day3 []model.Assignment
		for _, a := range c.Assignments {
			if a.DayIndex == 2 {
				day3 = append(day3, a)
			}
		}
		require.Len(t, day3, 2)
		grades := map[string]int{}
		for _, a := range day3 {
			grades[a.Grade]++
		}
		assert.Equal(t, map[string]int{"junior": 1, "senior": 1}, grades)
		assert.Empty(t, c.Skipped)
	}
}

func TestGenerate_EmptyCalendar(t *testing.T) {
	g := buildGenerator(t, "2024-01-07", "2024-01-01", model.UniformStaffing(1), nil, abc(), nil)
	c := g.Generate(0, zeroRand{})
	assert.True(t, c.Empty())
	assert.Empty(t, c.Skipped)
}

func TestSample(t *testing.T) {
	pool := []string{"a", "b", "c", "d"}
	got := sample(NewRand(5, 0), pool, 3)
	require.Len(t, got, 3)

	seen := map[string]bool{}
	for _, n := range got {
		assert.False(t, seen[n])
		seen[n] = true
	}
	// 原切片不被修改
	assert.Equal(t, []string{"a", "b", "c", "d"}, pool)
}
