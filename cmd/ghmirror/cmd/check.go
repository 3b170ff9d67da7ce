package cmd

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report projects with a pending update",
	Long: `Resolves the newest upstream state of every project and compares it with the
local ledger without downloading or removing anything.

Exits with code 1 when at least one project has a pending update.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		sum := client.Check(cmd.Context())
		printSummary(sum)

		info("")
		if sum.Changed == 0 {
			info("All projects up to date.")
		} else {
			info("%d project(s) have pending updates. Run 'ghmirror sync' to apply.", sum.Changed)
		}

		exitCode = sum.ExitCode()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
