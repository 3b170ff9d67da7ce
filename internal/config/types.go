package config

// Kind selects how a project's upstream state is tracked.
type Kind string

const (
	// KindRelease tracks the newest published release.
	KindRelease Kind = "release"
	// KindAction tracks the artifacts of the newest completed workflow run.
	KindAction Kind = "action"
)

// Config represents the ghmirror project list (projects.yaml or projects.toml).
type Config struct {
	Version   int               `yaml:"version,omitempty" toml:"version"`
	GitHub    GitHub            `yaml:"github,omitempty" toml:"github"`
	Variables map[string]string `yaml:"variables,omitempty" toml:"variables"`
	Defaults  Defaults          `yaml:"defaults,omitempty" toml:"defaults"`
	Projects  []Project         `yaml:"projects" toml:"projects"`

	// Dir is the directory holding the config file. Relative target
	// directories are resolved against it.
	Dir string `yaml:"-" toml:"-"`
}

// GitHub configures API access.
type GitHub struct {
	APIURL   string `yaml:"api_url,omitempty" toml:"api_url"`
	TokenEnv string `yaml:"token_env,omitempty" toml:"token_env"`
	Timeout  string `yaml:"timeout,omitempty" toml:"timeout"` // response header timeout, e.g. "60s"
}

// Defaults are merged into every project that leaves the field unset.
type Defaults struct {
	AssetPatterns     []string `yaml:"asset_patterns,omitempty" toml:"asset_patterns"`
	IncludePrerelease *bool    `yaml:"include_prerelease,omitempty" toml:"include_prerelease"`
}

// Project describes one mirrored repository.
type Project struct {
	Name      string `yaml:"name" toml:"name"`
	Repo      string `yaml:"repo" toml:"repo"` // owner/name
	TargetDir string `yaml:"target_dir" toml:"target_dir"`
	Kind      Kind   `yaml:"type,omitempty" toml:"type"`

	AssetPatterns []string `yaml:"asset_patterns,omitempty" toml:"asset_patterns"`

	// Release projects only.
	IncludePrerelease *bool `yaml:"include_prerelease,omitempty" toml:"include_prerelease"`

	// Action projects only: workflow file name or id, e.g. "core.yml".
	WorkflowFile string `yaml:"workflow_file,omitempty" toml:"workflow_file"`
}

// Prerelease reports whether prereleases may be mirrored.
func (p Project) Prerelease() bool {
	return p.IncludePrerelease != nil && *p.IncludePrerelease
}

// Owner returns the owner half of Repo.
func (p Project) Owner() string {
	owner, _, _ := splitRepo(p.Repo)
	return owner
}

// RepoName returns the name half of Repo.
func (p Project) RepoName() string {
	_, name, _ := splitRepo(p.Repo)
	return name
}
