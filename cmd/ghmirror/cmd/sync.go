package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bianoble/ghmirror/pkg/ghmirror"
)

var syncDryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror every project whose upstream state changed",
	Long: `Checks each configured project against GitHub, one at a time. When the newest
release or completed workflow run differs from the one recorded in the project's
.version.json, the target directory is emptied (the ledger is kept), matching
files are downloaded, and the ledger is rewritten.

A project that fails never stops the others. Do not run two syncs over the same
configuration at the same time; schedule ghmirror from a single timer or job.

Exit status: 0 when nothing changed, 1 when at least one project was updated
(or, with --dry-run, would be), 2 when the configuration could not be loaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		sum := client.Sync(cmd.Context(), ghmirror.SyncOptions{DryRun: syncDryRun})

		if syncDryRun {
			info("Dry run, no files written.")
		}
		printSummary(sum)

		info("")
		info("Sync complete: %d changed, %d unchanged, %d failed.", sum.Changed, sum.Unchanged, sum.Failed)

		exitCode = sum.ExitCode()
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "show what would change without touching any directory")
	rootCmd.AddCommand(syncCmd)
}
