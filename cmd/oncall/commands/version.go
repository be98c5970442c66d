package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VersionCmd 打印版本信息
func VersionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本信息",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "oncall %s\nBuild: %s\n", app.Version, app.Build)
			return nil
		},
	}
}
