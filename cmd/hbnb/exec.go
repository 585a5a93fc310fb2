package main

import (
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <line>...",
	Short: "Run console commands non-interactively",
	Long: `Run each argument as one console line, in order, and exit.

  hbnb exec 'create User first_name="Betty"' 'count User'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}
		if err := c.Start(cmd.Context()); err != nil {
			return err
		}
		c.Exec(cmd.Context(), cmd.OutOrStdout(), args...)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
