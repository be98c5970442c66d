package optimizer

import (
	"context"
	"sync"

	"github.com/paiban/oncall/pkg/model"
)

// trialResult 单次尝试的结果，spreads 为各等级第一阶段评分，空方案为 nil
type trialResult struct {
	candidate model.Candidate
	spreads   []float64
}

// runTrials 在工作协程池中执行全部尝试，结果在调用方协程中逐个交给 collect
// context 只在尝试之间检查，取消后不再派发新尝试并返回 ctx.Err()
func runTrials(ctx context.Context, cfg *Config, trial func(int) trialResult, collect func(trialResult)) error {
	workers := cfg.workers()
	jobChan := make(chan int, workers)
	resultChan := make(chan trialResult, workers)

	// 启动工作协程
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
					resultChan <- trial(index)
				}
			}
		}()
	}

	// 发送任务
	go func() {
		defer close(jobChan)
		for i := 0; i < cfg.Trials; i++ {
			select {
			case <-ctx.Done():
				return
			case jobChan <- i:
			}
		}
	}()

	// 等待完成
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// 收集结果
	completed := 0
	for result := range resultChan {
		collect(result)
		completed++
	}

	if completed < cfg.Trials {
		return ctx.Err()
	}
	return nil
}
