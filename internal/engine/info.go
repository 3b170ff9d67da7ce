package engine

import (
	"time"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/github"
)

// ConfigLayerStatus describes a config file candidate for display.
type ConfigLayerStatus struct {
	Level  string // "project", "user", "system"
	Path   string
	Exists bool
	Loaded bool
}

// InfoResult holds tool information for the info command.
type InfoResult struct {
	Version     string
	ConfigPath  string
	ConfigChain []ConfigLayerStatus
	APIURL      string
	TokenSource string // name of the variable that supplied the token, empty for anonymous
	Timeout     time.Duration
	Projects    int
	Releases    int
	Actions     int
}

// Info gathers tool information. cfg may be nil when no configuration was loaded.
func Info(version string, cfg *config.Config, configPath string, layers []config.ConfigLayerInfo, tokenSource string) *InfoResult {
	r := &InfoResult{
		Version:     version,
		ConfigPath:  configPath,
		APIURL:      github.DefaultAPIURL,
		TokenSource: tokenSource,
		Timeout:     config.DefaultTimeout,
	}

	for _, l := range layers {
		r.ConfigChain = append(r.ConfigChain, ConfigLayerStatus{
			Level:  string(l.Level),
			Path:   l.Path,
			Exists: l.Exists,
			Loaded: l.Path == configPath,
		})
	}

	if cfg == nil {
		return r
	}

	if cfg.GitHub.APIURL != "" {
		r.APIURL = cfg.GitHub.APIURL
	}
	if d, err := cfg.HeaderTimeout(); err == nil {
		r.Timeout = d
	}

	r.Projects = len(cfg.Projects)
	for _, p := range cfg.Projects {
		if config.MergeDefaults(cfg.Defaults, p).Kind == config.KindAction {
			r.Actions++
		} else {
			r.Releases++
		}
	}
	return r
}
