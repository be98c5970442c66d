// Package assembler 把胜出方案整理为按日期分组的值班表和统计
package assembler

import (
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/optimizer"
	"github.com/paiban/oncall/pkg/scheduler/staffing"
	"github.com/paiban/oncall/pkg/stats"
)

// Assemble 生成最终结果，outcome 为空时返回 nil
func Assemble(cfg *model.Config, plan *staffing.Plan, outcome *optimizer.Outcome) *model.ScheduleResult {
	winner := outcome.Winner()
	if winner == nil {
		return nil
	}

	result := &model.ScheduleResult{
		Mode:             cfg.Mode(),
		StartDate:        model.FormatDate(cfg.StartDate),
		EndDate:          model.FormatDate(cfg.EndDate),
		Points:           make(map[string]float64, len(cfg.Staff)),
		NumShifts:        make(map[string]int, len(cfg.Staff)),
		NumWeekendShifts: make(map[string]int, len(cfg.Staff)),
	}

	groupSchedule(result, winner)

	for _, st := range stats.Collect(winner.Assignments, cfg.Staff) {
		result.Points[st.Name] = st.Points
		result.NumShifts[st.Name] = st.Shifts
		result.NumWeekendShifts[st.Name] = st.WeekendShifts
		if cfg.Graded() {
			if result.GradeShifts == nil {
				result.GradeShifts = make(map[string]map[string]int, len(cfg.Grades))
				result.GradeWeekendShifts = make(map[string]map[string]int, len(cfg.Grades))
			}
			if result.GradeShifts[st.Grade] == nil {
				result.GradeShifts[st.Grade] = make(map[string]int)
				result.GradeWeekendShifts[st.Grade] = make(map[string]int)
			}
			result.GradeShifts[st.Grade][st.Name] = st.Shifts
			result.GradeWeekendShifts[st.Grade][st.Name] = st.WeekendShifts
		}
	}

	first := outcome.Selection(outcome.Groups[0])
	score := first.Scores[winner.Trial]
	result.ShiftDifference = int(score.ShiftSpread)
	result.WeekendShiftDifference = int(score.WeekendSpread)
	result.Score = first.BestScore

	if cfg.Graded() {
		result.GradeScores = make(map[string]model.GradeScore, len(cfg.Grades))
		for _, g := range cfg.Grades {
			v := stats.Stage2(winner, model.StaffOfGrade(cfg.Staff, g))
			result.GradeScores[g] = model.GradeScore{ScoreVector: v, Score: v.Total()}
		}
	}

	result.Coverage = stats.NewCoverageAnalyzer().Analyze(plan, winner)
	result.Search = model.SearchStats{
		Trials:      outcome.Trials,
		Feasible:    outcome.Feasible,
		Stage1:      len(first.Stage1),
		Stage2:      len(first.Stage2),
		WinnerTrial: winner.Trial,
	}
	return result
}

// groupSchedule 按日期（等级模式下再按等级）分组
func groupSchedule(result *model.ScheduleResult, winner *model.Candidate) {
	if result.Mode != model.ModeGraded {
		result.Schedule = make(map[string][]model.ScheduleEntry)
		for _, a := range winner.Assignments {
			date := model.FormatDate(a.Date)
			result.Schedule[date] = append(result.Schedule[date], model.ScheduleEntry{Staff: a.Staff, Points: a.Points})
		}
		return
	}

	result.GradedSchedule = make(map[string]map[string][]model.ScheduleEntry)
	for _, a := range winner.Assignments {
		date := model.FormatDate(a.Date)
		if result.GradedSchedule[date] == nil {
			result.GradedSchedule[date] = make(map[string][]model.ScheduleEntry)
		}
		result.GradedSchedule[date][a.Grade] = append(result.GradedSchedule[date][a.Grade],
			model.ScheduleEntry{Staff: a.Staff, Points: a.Points})
	}
}
