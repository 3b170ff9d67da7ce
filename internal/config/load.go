package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/bianoble/ghmirror/internal/match"
	"github.com/bianoble/ghmirror/internal/transform"
)

// DefaultTimeout is the response header timeout used when github.timeout is unset.
const DefaultTimeout = 60 * time.Second

// Load reads a project list. The format is chosen by extension: ".toml" is
// parsed as TOML, anything else as YAML.
//
// Only problems with the file as a whole are returned as errors. Problems with
// a single project are reported later by Prepare so one bad entry never stops
// the others from syncing.
func Load(path string) (*Config, error) {
	expanded, err := homedir.Expand(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("expanding config path %s: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", expanded, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", expanded, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", expanded, err)
		}
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.Dir = filepath.Dir(abs)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks the file-level settings of a Config.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 0 && cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d, only version 1 is supported", cfg.Version))
	}

	if len(cfg.Projects) == 0 {
		errs = append(errs, "at least one project is required")
	}

	if _, err := cfg.HeaderTimeout(); err != nil {
		errs = append(errs, err.Error())
	}

	for _, p := range cfg.Defaults.AssetPatterns {
		if _, err := match.Compile([]string{p}); err != nil {
			errs = append(errs, fmt.Sprintf("defaults: %v", err))
		}
	}

	return errs
}

// ValidateProject checks a single project after defaults are merged.
// Returns a list of validation error messages (empty if valid).
func ValidateProject(p Project) []string {
	var errs []string

	prefix := "project"
	if p.Name != "" {
		prefix = fmt.Sprintf("project '%s'", p.Name)
	}

	if p.Name == "" {
		errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
	}

	if p.Repo == "" {
		errs = append(errs, fmt.Sprintf("%s: 'repo' is required, add 'repo: owner/name'", prefix))
	} else if _, _, ok := splitRepo(p.Repo); !ok {
		errs = append(errs, fmt.Sprintf("%s: repo '%s' must have the form owner/name", prefix, p.Repo))
	}

	if p.TargetDir == "" {
		errs = append(errs, fmt.Sprintf("%s: 'target_dir' is required", prefix))
	}

	switch p.Kind {
	case KindRelease, KindAction:
		// valid
	case "":
		errs = append(errs, fmt.Sprintf("%s: 'type' is required, must be one of: release, action", prefix))
	default:
		errs = append(errs, fmt.Sprintf("%s: unknown project type '%s', must be one of: release, action", prefix, p.Kind))
	}

	if _, err := match.Compile(p.AssetPatterns); err != nil {
		errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
	}

	return errs
}

// Prepare merges defaults into p, validates it, and resolves its target
// directory to a clean absolute path.
func (c *Config) Prepare(p Project) (Project, error) {
	out := MergeDefaults(c.Defaults, p)

	if errs := ValidateProject(out); len(errs) > 0 {
		return out, &ValidationError{Errors: errs}
	}

	dir, err := c.resolveTargetDir(out)
	if err != nil {
		prefix := fmt.Sprintf("project '%s'", out.Name)
		return out, &ValidationError{Errors: []string{fmt.Sprintf("%s: target_dir: %v", prefix, err)}}
	}
	out.TargetDir = dir

	return out, nil
}

// HeaderTimeout returns the configured GitHub response header timeout.
func (c *Config) HeaderTimeout() (time.Duration, error) {
	if c.GitHub.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.GitHub.Timeout)
	if err != nil {
		return 0, fmt.Errorf("github.timeout: invalid duration '%s'", c.GitHub.Timeout)
	}
	if d <= 0 {
		return 0, fmt.Errorf("github.timeout: must be positive, got '%s'", c.GitHub.Timeout)
	}
	return d, nil
}

// resolveTargetDir expands template variables, environment variables and a
// leading "~", then anchors relative paths at the config directory.
func (c *Config) resolveTargetDir(p Project) (string, error) {
	vars := transform.MergeVars(c.Variables, map[string]string{
		"name":  p.Name,
		"owner": p.Owner(),
		"repo":  p.RepoName(),
	})

	dir, err := transform.Expand(p.TargetDir, vars)
	if err != nil {
		return "", err
	}

	dir, err = homedir.Expand(os.ExpandEnv(dir))
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("expands to an empty path")
	}

	if !filepath.IsAbs(dir) {
		base := c.Dir
		if base == "" {
			base = "."
		}
		dir = filepath.Join(base, dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func splitRepo(repo string) (owner, name string, ok bool) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
