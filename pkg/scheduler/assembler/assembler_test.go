package assembler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/oncall/pkg/calendar"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/optimizer"
	"github.com/paiban/oncall/pkg/scheduler/staffing"
)

func run(t *testing.T, cfg *model.Config) (*staffing.Plan, *optimizer.Outcome) {
	t.Helper()
	days := calendar.Build(cfg.StartDate, cfg.EndDate, cfg.Holidays)
	plan, err := staffing.New(days, cfg.Staffing, cfg.Grades, cfg.Staff, cfg.Requirements)
	require.NoError(t, err)

	out, err := optimizer.Run(context.Background(), &optimizer.Config{
		Plan: plan, Staff: cfg.Staff, Trials: cfg.Trials, Seed: 11,
	})
	require.NoError(t, err)
	return plan, out
}

func config(t *testing.T, start, end string) *model.Config {
	t.Helper()
	s, err := model.ParseDate(start)
	require.NoError(t, err)
	e, err := model.ParseDate(end)
	require.NoError(t, err)
	return &model.Config{StartDate: s, EndDate: e, Staffing: model.UniformStaffing(1), Trials: 20}
}

func TestAssemble_Simple(t *testing.T) {
	cfg := config(t, "2024-01-01", "2024-01-14")
	cfg.Staff = []model.StaffMember{
		model.NewStaffMember("A", ""),
		model.NewStaffMember("B", ""),
		model.NewStaffMember("C", ""),
		model.NewStaffMember("D", ""),
	}
	holiday, _ := model.ParseDate("2024-01-10")
	cfg.Holidays = append(cfg.Holidays, holiday)

	plan, out := run(t, cfg)
	result := Assemble(cfg, plan, out)
	require.NotNil(t, result)

	assert.Equal(t, model.ModeSimple, result.Mode)
	assert.Equal(t, "2024-01-01", result.StartDate)
	assert.Nil(t, result.GradedSchedule)
	assert.Len(t, result.Schedule, 14)
	assert.Equal(t, []model.ScheduleEntry{{Staff: result.Schedule["2024-01-10"][0].Staff, Points: 2}},
		result.Schedule["2024-01-10"])

	// 每人积分等于其值班日权重之和
	weights := map[string]float64{}
	for _, d := range plan.Days() {
		weights[d.Key()] = d.Weight
	}
	sums := map[string]float64{}
	shifts := map[string]int{}
	for date, entries := range result.Schedule {
		for _, e := range entries {
			assert.Equal(t, weights[date], e.Points)
			sums[e.Staff] += e.Points
			shifts[e.Staff]++
		}
	}
	for _, s := range cfg.Staff {
		assert.Equal(t, sums[s.Name], result.Points[s.Name], s.Name)
		assert.Equal(t, shifts[s.Name], result.NumShifts[s.Name], s.Name)
	}
	assert.Equal(t, 14, result.TotalAssignments())

	sel := out.Selection(model.ImplicitGrade)
	assert.Equal(t, sel.BestScore, result.Score)
	assert.Equal(t, sel.Winner(), result.Search.WinnerTrial)
	assert.Equal(t, 20, result.Search.Trials)
	require.NotNil(t, result.Coverage)
	assert.Equal(t, 100.0, result.Coverage.FillRate)
}

func TestAssemble_Graded(t *testing.T) {
	cfg := config(t, "2024-01-01", "2024-01-07")
	cfg.Grades = []string{"junior", "senior"}
	cfg.Staff = []model.StaffMember{
		model.NewStaffMember("j1", "junior"),
		model.NewStaffMember("j2", "junior"),
		model.NewStaffMember("s1", "senior"),
	}
	cfg.Requirements = model.ShiftRequirements{"2024-01-03": {"senior", "junior"}}
	cfg.Trials = 5

	plan, out := run(t, cfg)
	result := Assemble(cfg, plan, out)
	require.NotNil(t, result)

	assert.Equal(t, model.ModeGraded, result.Mode)
	assert.Nil(t, result.Schedule)

	day3 := result.GradedSchedule["2024-01-03"]
	require.Len(t, day3["senior"], 1)
	require.Len(t, day3["junior"], 1)
	assert.Equal(t, "s1", day3["senior"][0].Staff)

	assert.Equal(t, 1, result.GradeShifts["senior"]["s1"])
	assert.Contains(t, result.GradeShifts["junior"], "j1")
	assert.NotContains(t, result.GradeShifts["junior"], "s1")
	assert.Len(t, result.GradeScores, 2)
	assert.Len(t, result.Entries("2024-01-03", cfg.Grades), 2)
}

func TestAssemble_Empty(t *testing.T) {
	cfg := config(t, "2024-01-01", "2024-01-02")
	cfg.Staff = []model.StaffMember{model.NewStaffMember("solo", "", "2024-01-01", "2024-01-02")}

	plan, out := run(t, cfg)
	assert.Nil(t, Assemble(cfg, plan, out))
}
