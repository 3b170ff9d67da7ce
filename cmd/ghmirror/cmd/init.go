package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/sandbox"
)

var initForce bool

// initTemplate is the default projects.yaml scaffold.
const initTemplate = `# ghmirror project list
version: 1

# github:
#   api_url: https://api.github.com   # GitHub Enterprise: https://host/api/v3
#   token_env: GITHUB_TOKEN           # default: GHMIRROR_TOKEN, then GITHUB_TOKEN
#   timeout: 60s                      # wait for response headers

variables:
  root: mirror

defaults:
  asset_patterns: ["*"]               # '*' matches anything; patterns match name prefixes
  include_prerelease: false

projects:
  # Newest stable release, APKs only.
  - name: example-app
    repo: your-org/example-app
    target_dir: "{{.root}}/{{.owner}}/{{.repo}}"
    asset_patterns: ["*.apk"]

  # Artifacts of the newest completed workflow run, saved as zip files.
  # - name: example-ci
  #   repo: your-org/example-app
  #   type: action
  #   workflow_file: build.yml
  #   target_dir: "{{.root}}/ci/{{.repo}}"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter projects.yaml",
	Long: `Creates a projects.yaml file (or the file named by --config) with a
commented example release project and action project.

Use --force to overwrite an existing file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := configPath
		if outPath == "" {
			outPath = config.DefaultFileName
		}
		abs, err := filepath.Abs(outPath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		outPath = abs

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := sandbox.SafeWrite(filepath.Dir(outPath), filepath.Base(outPath), []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Edit the file to list your repositories")
		info("  2. Run 'ghmirror check' to see what would be downloaded")
		info("  3. Run 'ghmirror sync' from a timer to keep the mirror current")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
