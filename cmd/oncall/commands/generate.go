package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/paiban/oncall/internal/handler"
	"github.com/paiban/oncall/internal/repository"
	"github.com/paiban/oncall/pkg/scheduler"
	"github.com/paiban/oncall/pkg/stats"
)

// generateOptions generate 命令参数
type generateOptions struct {
	file    string
	seed    uint64
	trials  int
	workers int
	save    bool
	report  bool
}

// GenerateCmd 根据请求文件生成值班表
func GenerateCmd(app *AppContext) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate -f <request.yaml>",
		Short: "根据请求文件生成值班表",
		Long: `读取 YAML（或 JSON）格式的请求文件并在本地生成值班表，结果以 JSON 输出。
文件字段与 HTTP 接口 POST /api/v1/schedules 的请求体一致，"-" 表示从标准输入读取。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "请求文件路径")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "随机种子，覆盖文件中的 seed")
	cmd.Flags().IntVar(&opts.trials, "trials", 0, "尝试次数，覆盖文件中的 find")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "并行度，0 表示使用配置")
	cmd.Flags().BoolVar(&opts.save, "save", false, "保存结果并输出ID")
	cmd.Flags().BoolVar(&opts.report, "report", false, "在标准错误输出覆盖率报告")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runGenerate(cmd *cobra.Command, app *AppContext, opts *generateOptions) error {
	req, err := readRequest(cmd, opts.file)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.seed
		req.Seed = &seed
	}
	if opts.trials > 0 {
		req.Find = opts.trials
	}

	v, err := handler.NewRequestValidator()
	if err != nil {
		return err
	}
	if err := v.Struct(req); err != nil {
		return err
	}

	defaults := handler.Defaults{
		Trials:    app.Cfg.Optimizer.DefaultTrials,
		MaxTrials: app.Cfg.Optimizer.MaxTrials,
		Workers:   app.Cfg.Optimizer.Workers,
		Seed:      app.Cfg.Optimizer.Seed,
	}
	if opts.workers > 0 {
		defaults.Workers = opts.workers
	}
	cfg, err := req.ToConfig(defaults)
	if err != nil {
		return err
	}

	result, err := scheduler.Optimize(app.Ctx, cfg)
	if err != nil {
		return err
	}

	out := handler.GenerateResponse{ScheduleResult: result}
	if opts.save {
		stores, err := app.Stores()
		if err != nil {
			return err
		}
		params, err := json.Marshal(req)
		if err != nil {
			return err
		}
		stored := repository.NewStoredResult(params, result)
		if err := stores.Results.Save(app.Ctx, stored); err != nil {
			return err
		}
		out.ScheduleID = stored.ID
	}

	if opts.report && result.Coverage != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), stats.NewCoverageAnalyzer().GenerateCoverageReport(result.Coverage))
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

// readRequest 读取请求文件，YAML 是 JSON 的超集，两种格式都可解析
func readRequest(cmd *cobra.Command, path string) (*handler.GenerateRequest, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("读取请求文件失败: %w", err)
	}

	var req handler.GenerateRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("解析请求文件失败: %w", err)
	}
	return &req, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
