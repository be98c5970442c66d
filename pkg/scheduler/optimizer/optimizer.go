// Package optimizer 多次随机尝试并按两阶段公平性规则筛选值班方案
package optimizer

import (
	"context"
	"math"
	"runtime"
	"sort"

	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/generator"
	"github.com/paiban/oncall/pkg/scheduler/staffing"
	"github.com/paiban/oncall/pkg/stats"
)

// Config 优化配置
type Config struct {
	Plan    *staffing.Plan
	Staff   []model.StaffMember
	Trials  int
	Seed    uint64
	Workers int // <=0 使用 GOMAXPROCS

	// NewRand 为每次尝试创建随机数来源，为空时由 Seed 和尝试序号派生
	NewRand func(trial int) generator.Rand
	Logger  *logger.OptimizerLogger
}

func (c *Config) workers() int {
	w := c.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if c.Trials > 0 && w > c.Trials {
		w = c.Trials
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (c *Config) rand(trial int) generator.Rand {
	if c.NewRand != nil {
		return c.NewRand(trial)
	}
	return generator.NewRand(c.Seed, trial)
}

// Selection 某等级的两阶段筛选结果，尝试序号均按升序排列
type Selection struct {
	Grade      string                    `json:"grade"`
	Stage1     []int                     `json:"stage1"`
	Stage2     []int                     `json:"stage2"`
	BestSpread float64                   `json:"best_spread"`
	BestScore  float64                   `json:"best_score"`
	Scores     map[int]model.ScoreVector `json:"-"` // 第一阶段保留方案的评分
}

// Winner 该等级胜出的方案序号（并列取最小序号）
func (s *Selection) Winner() int {
	if len(s.Stage2) == 0 {
		return -1
	}
	return s.Stage2[0]
}

// Outcome 优化结果
type Outcome struct {
	Trials     int
	Feasible   int // 至少有一个分配的尝试数
	Groups     []string
	Selections map[string]*Selection

	candidates map[int]*model.Candidate
}

// Empty 所有尝试都没有产生任何分配
func (o *Outcome) Empty() bool {
	return o.Feasible == 0
}

// Selection 返回某等级的筛选结果
func (o *Outcome) Selection(grade string) *Selection {
	return o.Selections[grade]
}

// Candidate 返回第一阶段保留的方案
func (o *Outcome) Candidate(trial int) *model.Candidate {
	return o.candidates[trial]
}

// Winner 最终方案：第一个等级胜出集合中序号最小的方案
// 等级模式下其余等级的筛选结果只用于报告评分，不参与挑选
func (o *Outcome) Winner() *model.Candidate {
	if o.Empty() || len(o.Groups) == 0 {
		return nil
	}
	return o.candidates[o.Selections[o.Groups[0]].Winner()]
}

// Run 执行全部尝试并筛选
func Run(ctx context.Context, cfg *Config) (*Outcome, error) {
	groups := cfg.Plan.Groups()
	members := make([][]model.StaffMember, len(groups))
	for i, g := range groups {
		members[i] = model.StaffOfGrade(cfg.Staff, g)
	}

	gen := generator.New(cfg.Plan, cfg.Staff).WithLogger(cfg.Logger)
	red := newReducer(groups)

	err := runTrials(ctx, cfg, func(trial int) trialResult {
		c := gen.Generate(trial, cfg.rand(trial))
		res := trialResult{candidate: c}
		if !c.Empty() {
			res.spreads = make([]float64, len(groups))
			for i := range groups {
				res.spreads[i] = stats.PointSpread(&res.candidate, members[i])
			}
		}
		return res
	}, red.add)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Trials:     cfg.Trials,
		Feasible:   red.feasible,
		Groups:     groups,
		Selections: make(map[string]*Selection, len(groups)),
		candidates: red.candidates,
	}
	for i, g := range groups {
		sel := red.selection(i)
		sel.Grade = g
		secondStage(sel, out.candidates, members[i])
		out.Selections[g] = sel
		if cfg.Logger != nil {
			cfg.Logger.Stage(g, 1, len(sel.Stage1), sel.BestSpread)
			cfg.Logger.Stage(g, 2, len(sel.Stage2), sel.BestScore)
		}
	}
	return out, nil
}

// secondStage 在第一阶段保留的方案中按第二阶段评分筛选
func secondStage(sel *Selection, candidates map[int]*model.Candidate, staff []model.StaffMember) {
	sel.Scores = make(map[int]model.ScoreVector, len(sel.Stage1))
	best := math.Inf(1)
	for _, trial := range sel.Stage1 {
		score := stats.Stage2(candidates[trial], staff)
		sel.Scores[trial] = score
		total := score.Total()
		switch {
		case total < best:
			best = total
			sel.Stage2 = []int{trial}
		case total == best:
			sel.Stage2 = append(sel.Stage2, trial)
		}
	}
	if len(sel.Stage2) > 0 {
		sel.BestScore = best
	}
}

// reducer 第一阶段归约
// 结果到达顺序不影响保留集合；集合最后按序号排序，等价于按序号顺序归约
type reducer struct {
	best       []float64
	sets       [][]int
	refs       map[int]int
	candidates map[int]*model.Candidate
	feasible   int
}

func newReducer(groups []string) *reducer {
	r := &reducer{
		best:       make([]float64, len(groups)),
		sets:       make([][]int, len(groups)),
		refs:       make(map[int]int),
		candidates: make(map[int]*model.Candidate),
	}
	for i := range r.best {
		r.best[i] = math.Inf(1)
	}
	return r
}

func (r *reducer) add(res trialResult) {
	if res.spreads == nil {
		return
	}
	r.feasible++
	trial := res.candidate.Trial

	for i, spread := range res.spreads {
		switch {
		case spread < r.best[i]:
			for _, old := range r.sets[i] {
				r.release(old)
			}
			r.best[i] = spread
			r.sets[i] = []int{trial}
		case spread == r.best[i]:
			r.sets[i] = append(r.sets[i], trial)
		default:
			continue
		}
		r.refs[trial]++
	}

	if r.refs[trial] > 0 {
		c := res.candidate
		r.candidates[trial] = &c
	}
}

func (r *reducer) release(trial int) {
	r.refs[trial]--
	if r.refs[trial] <= 0 {
		delete(r.refs, trial)
		delete(r.candidates, trial)
	}
}

func (r *reducer) selection(i int) *Selection {
	set := append([]int(nil), r.sets[i]...)
	sort.Ints(set)
	sel := &Selection{Stage1: set}
	if len(set) > 0 {
		sel.BestSpread = r.best[i]
	}
	return sel
}
