package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recorded state of every project",
	Long: `Reads each project's .version.json and shows its type, recorded version, last
sync time and state: synced, incomplete (recorded files are missing), pending
(never synced or the type changed) or invalid. GitHub is not contacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		statuses := client.Status()
		if len(statuses) == 0 {
			info("No projects configured.")
			return nil
		}

		fmt.Printf("%-24s %-8s %-20s %-22s %-6s %s\n", "PROJECT", "TYPE", "VERSION", "SYNCED AT", "FILES", "STATE")
		for _, s := range statuses {
			fmt.Printf("%-24s %-8s %-20s %-22s %-6d %s\n", truncate(s.Name, 24), s.Kind, truncate(s.Version, 20), s.SyncTime, s.Files, s.State)
			if len(s.Missing) > 0 {
				detail("missing: %s", strings.Join(s.Missing, ", "))
			}
			if s.Err != nil {
				detail("%v", s.Err)
			}
		}

		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
