// oncall 命令行工具：本地生成值班表、查看已保存结果
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paiban/oncall/cmd/oncall/commands"
	"github.com/paiban/oncall/internal/config"
	"github.com/paiban/oncall/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	app := &commands.AppContext{
		Ctx:     context.Background(),
		Version: Version,
		Build:   fmt.Sprintf("%s (%s)", BuildTime, GitCommit),
	}

	rootCmd := &cobra.Command{
		Use:           "oncall",
		Short:         "值班排班工具",
		Long:          `在本地生成值班表，或查看服务中已保存的值班表。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := commands.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			logger.Init(logger.Config{
				Level:  cfg.App.LogLevel,
				Format: "console",
				Output: "stderr",
			})
			app.Cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	rootCmd.AddCommand(
		commands.GenerateCmd(app),
		commands.ShowCmd(app),
		commands.VersionCmd(app),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
