package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const configDirName = "ghmirror"

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "projects.yaml"

// ConfigLevel represents where a candidate config file lives.
type ConfigLevel string

const (
	LevelProject ConfigLevel = "project"
	LevelUser    ConfigLevel = "user"
	LevelSystem  ConfigLevel = "system"
)

// ConfigLayerInfo describes a candidate config file and whether it exists.
type ConfigLayerInfo struct {
	Path   string
	Level  ConfigLevel
	Exists bool
}

// DiscoverOptions controls how config paths are discovered.
type DiscoverOptions struct {
	// WorkDir is searched first. Empty means the current directory.
	WorkDir string

	// UserConfigPath overrides the default user config path.
	// Empty means use the OS default.
	UserConfigPath string

	// SystemConfigPath overrides the default system config path.
	// Empty means use the OS default.
	SystemConfigPath string
}

// DiscoverPaths returns the candidate config files in lookup order, highest
// precedence first. Paths are deduplicated by absolute path.
func DiscoverPaths(opts DiscoverOptions) []ConfigLayerInfo {
	var layers []ConfigLayerInfo
	seen := make(map[string]bool)

	addLayer := func(level ConfigLevel, path string) {
		if path == "" {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		_, statErr := os.Stat(path)
		layers = append(layers, ConfigLayerInfo{
			Path:   path,
			Level:  level,
			Exists: statErr == nil,
		})
	}

	for _, name := range []string{DefaultFileName, "projects.yml", "projects.toml"} {
		addLayer(LevelProject, filepath.Join(opts.WorkDir, name))
	}

	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath = defaultUserConfigPath()
	}
	addLayer(LevelUser, userPath)

	sysPath := opts.SystemConfigPath
	if sysPath == "" {
		sysPath = defaultSystemConfigPath()
	}
	addLayer(LevelSystem, sysPath)

	return layers
}

// Find returns explicit when set, otherwise the first discovered config file
// that exists. When none exists it returns the working-directory default so
// the caller reports a sensible "not found" path.
func Find(explicit string, opts DiscoverOptions) string {
	if explicit != "" {
		return explicit
	}
	layers := DiscoverPaths(opts)
	for _, l := range layers {
		if l.Exists {
			return l.Path
		}
	}
	return filepath.Join(opts.WorkDir, DefaultFileName)
}

// defaultUserConfigPath returns the platform-standard user config path.
func defaultUserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDirName, DefaultFileName)
}

// defaultSystemConfigPath returns the platform-standard system config path.
func defaultSystemConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		pd := os.Getenv("ProgramData")
		if pd == "" {
			pd = `C:\ProgramData`
		}
		return filepath.Join(pd, configDirName, DefaultFileName)
	default:
		return filepath.Join("/etc", configDirName, DefaultFileName)
	}
}
