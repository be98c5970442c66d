package commands

import (
	"github.com/spf13/cobra"
)

// ShowCmd 查看已保存的值班表
func ShowCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <schedule_id>",
		Short: "查看已保存的值班表",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := app.Stores()
			if err != nil {
				return err
			}
			stored, err := stores.Results.Get(app.Ctx, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stored)
		},
	}
}
