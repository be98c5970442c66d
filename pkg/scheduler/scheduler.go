// Package scheduler 值班表生成入口
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paiban/oncall/pkg/calendar"
	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/assembler"
	"github.com/paiban/oncall/pkg/scheduler/generator"
	"github.com/paiban/oncall/pkg/scheduler/optimizer"
	"github.com/paiban/oncall/pkg/scheduler/staffing"
	"github.com/paiban/oncall/pkg/validator"
)

// ErrNoFeasibleSchedule 所有尝试均未产生任何分配
var ErrNoFeasibleSchedule = apperrors.ErrNoFeasibleSolution

// Validate 检查配置，返回的错误均为 *errors.AppError
func Validate(cfg *model.Config) error {
	ve := &apperrors.ValidationErrors{}

	if cfg.Trials < 1 {
		ve.Add("find", "尝试次数必须大于 0")
	}
	if cfg.StartDate.IsZero() {
		ve.Add("start_date", "不能为空")
	}
	if cfg.EndDate.IsZero() {
		ve.Add("end_date", "不能为空")
	}
	if len(cfg.Staff) == 0 {
		ve.Add("staff", "值班人员不能为空")
	}

	seen := make(map[string]struct{}, len(cfg.Staff))
	for _, s := range cfg.Staff {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			ve.Add("staff", "人员姓名不能为空")
			continue
		}
		if _, dup := seen[name]; dup {
			ve.Add("staff", fmt.Sprintf("人员姓名重复: %s", name))
		}
		seen[name] = struct{}{}
		if cfg.Graded() && s.Grade == "" {
			ve.Add("staff_grades", fmt.Sprintf("人员 '%s' 缺少等级", name))
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}

	if !cfg.Range().Valid() {
		return apperrors.Newf(apperrors.CodeInvalidTimeRange, "结束日期 %s 早于开始日期 %s",
			model.FormatDate(cfg.EndDate), model.FormatDate(cfg.StartDate))
	}
	return nil
}

// Prepare 校验配置并生成需求计划
func Prepare(cfg *model.Config) (*staffing.Plan, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	days := calendar.Build(cfg.StartDate, cfg.EndDate, cfg.Holidays)
	return staffing.New(days, cfg.Staffing, cfg.Grades, cfg.Staff, cfg.Requirements)
}

// Optimize 生成值班表
// 配置错误在任何尝试前返回；所有尝试都为空时返回 ErrNoFeasibleSchedule
func Optimize(ctx context.Context, cfg *model.Config) (*model.ScheduleResult, error) {
	plan, err := Prepare(cfg)
	if err != nil {
		return nil, err
	}

	seed := generator.RandomSeed()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	log := logger.NewOptimizerLogger(ctx)
	log.StartOptimize(string(cfg.Mode()), len(cfg.Staff), len(plan.Days()), cfg.Trials)
	start := time.Now()

	outcome, err := optimizer.Run(ctx, &optimizer.Config{
		Plan:    plan,
		Staff:   cfg.Staff,
		Trials:  cfg.Trials,
		Seed:    seed,
		Workers: cfg.Workers,
		Logger:  log,
	})
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, apperrors.Wrap(err, apperrors.CodeTimeout, "值班表生成超时")
		case errors.Is(err, context.Canceled):
			return nil, apperrors.Wrap(err, apperrors.CodeCanceled, "值班表生成已取消")
		default:
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "值班表生成失败")
		}
	}

	if outcome.Empty() {
		log.NoFeasibleSchedule(time.Since(start), cfg.Trials)
		return nil, apperrors.NoFeasibleSolution("所有尝试均未产生任何排班").
			WithDetails(fmt.Sprintf("%d 次尝试，%d 天，%d 名人员", cfg.Trials, len(plan.Days()), len(cfg.Staff)))
	}

	winner := outcome.Winner()
	for _, c := range validator.NewConflictDetector(nil).DetectAll(winner, cfg.Staff, plan) {
		log.InvariantViolation(string(c.Type), c.Staff, c.Date, c.Message)
	}

	result := assembler.Assemble(cfg, plan, outcome)
	result.Search.Seed = &seed

	log.OptimizeComplete(time.Since(start), result.Score, len(winner.Assignments))
	return result, nil
}
