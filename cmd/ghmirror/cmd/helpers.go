package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/pkg/ghmirror"
)

// defaultTokenEnv lists the variables searched for a token, in order, when
// the config does not name one.
var defaultTokenEnv = []string{"GHMIRROR_TOKEN", "GITHUB_TOKEN"}

// tokens resolves the GitHub token. It is kept apart from the flag viper so
// the GHMIRROR_ prefix lookup never shadows the configured variable.
var tokens = viper.New()

// envToken reads the token through viper on every request.
type envToken struct{}

func (envToken) Token() string { return tokens.GetString("token") }

// bindToken points the "token" key at the configured variables and returns
// the name of the variable currently holding a token, or "" for anonymous access.
func bindToken(cfg *config.Config) string {
	names := defaultTokenEnv
	if cfg != nil && cfg.GitHub.TokenEnv != "" {
		names = []string{cfg.GitHub.TokenEnv}
	}
	// BindEnv appends, so start over on every call.
	tokens = viper.New()
	_ = tokens.BindEnv(append([]string{"token"}, names...)...)

	for _, n := range names {
		if os.Getenv(n) != "" {
			return n
		}
	}
	return ""
}

// resolveConfigPath returns --config when set, otherwise the first project
// list found in the working directory, user config dir or system config dir.
func resolveConfigPath() string {
	return config.Find(configPath, config.DiscoverOptions{})
}

// newClient loads the configuration and builds a library client.
func newClient() (*ghmirror.Client, error) {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if src := bindToken(cfg); src != "" {
		logrus.WithField("env", src).Debug("Using GitHub token")
	} else {
		logrus.Debug("No GitHub token set, using anonymous access")
	}

	return ghmirror.New(ghmirror.Options{
		ConfigPath: path,
		Config:     cfg,
		Tokens:     envToken{},
		Logger:     logrus.StandardLogger(),
	})
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

func humanSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}

// printSummary writes the per-project outcome of a batch run.
func printSummary(sum *ghmirror.Summary) {
	for _, r := range sum.Results {
		switch {
		case r.Err != nil:
			errorf("%v", r.Err)
		case r.Unavailable != nil:
			info("  %-24s unavailable: %v", r.Name, r.Unavailable)
		case r.Outcome == ghmirror.Changed && r.DryRun:
			info("  %-24s pending     %s -> %s", r.Name, previousVersion(r), r.Candidate.Version())
		case r.Outcome == ghmirror.Changed:
			info("  %-24s updated     %s -> %s", r.Name, previousVersion(r), r.Candidate.Version())
		default:
			info("  %-24s up to date  %s", r.Name, previousVersion(r))
		}

		for _, f := range r.Written {
			detail("  %-8s %s (%s)", f.Action, f.Name, humanSize(f.Size))
		}
		for _, f := range r.Skipped {
			detail("  %-8s %s", f.Action, f.Name)
		}
		for _, e := range r.Errors {
			errorf("%s: %s", r.Name, e.Error())
		}
	}
}

func previousVersion(r ghmirror.ProjectResult) string {
	if r.Previous == nil {
		return "(none)"
	}
	return r.Previous.Version()
}
