package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/engine"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the ghmirror configuration",
	Long: `Displays the ghmirror version, the config file search chain, the GitHub API
endpoint and timeout, where the token comes from, and project counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveConfigPath()
		cfg, err := config.Load(path) // ok if config doesn't exist
		if err != nil {
			cfg = nil
		}

		result := engine.Info(version, cfg, path, config.DiscoverPaths(config.DiscoverOptions{}), bindToken(cfg))

		fmt.Printf("ghmirror %s\n", result.Version)

		if configPath == "" {
			fmt.Println("  config chain:")
			for _, layer := range result.ConfigChain {
				status := "not found"
				switch {
				case layer.Loaded && cfg != nil:
					status = "loaded"
				case layer.Loaded:
					status = "invalid"
				case layer.Exists:
					status = "shadowed"
				}
				fmt.Printf("    %-10s %s (%s)\n", layer.Level+":", layer.Path, status)
			}
		} else {
			fmt.Printf("  config:        %s\n", result.ConfigPath)
		}
		if err != nil {
			detail("config error: %v", err)
		}

		token := "(none, anonymous access)"
		if result.TokenSource != "" {
			token = "$" + result.TokenSource
		}
		fmt.Printf("  api url:       %s\n", result.APIURL)
		fmt.Printf("  timeout:       %s\n", result.Timeout)
		fmt.Printf("  token:         %s\n", token)
		fmt.Printf("  projects:      %d (%d release, %d action)\n", result.Projects, result.Releases, result.Actions)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
