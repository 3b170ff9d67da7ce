package engine

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/ledger"
	"github.com/bianoble/ghmirror/internal/match"
)

// Project states reported by StatusEngine.
const (
	StateSynced     = "synced"
	StateIncomplete = "incomplete"
	StatePending    = "pending"
	StateInvalid    = "invalid"
)

// StatusEngine reports the recorded state of every project from the ledgers
// alone. It never contacts GitHub.
type StatusEngine struct {
	Ledger *ledger.Store
}

// ProjectStatus describes the current state of a project.
type ProjectStatus struct {
	Name      string
	Repo      string
	Kind      config.Kind
	TargetDir string
	Version   string
	SyncTime  string
	Files     int
	Missing   []string
	State     string
	Err       error
}

// Status returns the state of all projects in cfg.
func (e *StatusEngine) Status(cfg *config.Config) []ProjectStatus {
	statuses := make([]ProjectStatus, 0, len(cfg.Projects))
	for _, raw := range cfg.Projects {
		statuses = append(statuses, e.projectStatus(cfg, raw))
	}
	return statuses
}

func (e *StatusEngine) projectStatus(cfg *config.Config, raw config.Project) ProjectStatus {
	p, err := cfg.Prepare(raw)
	s := ProjectStatus{Name: p.Name, Repo: p.Repo, Kind: p.Kind, TargetDir: p.TargetDir}
	if err != nil {
		s.State = StateInvalid
		s.Err = err
		return s
	}

	entry, ok, err := e.Ledger.Load(p.TargetDir)
	if err != nil {
		if errors.Is(err, ledger.ErrCorrupt) {
			s.State = StatePending
		} else {
			s.State = StateInvalid
		}
		s.Err = err
		return s
	}
	if !ok {
		s.State = StatePending
		s.Version = "(never synced)"
		return s
	}

	s.Version = entry.Version()
	s.SyncTime = entry.SyncTime
	if entry.Type != p.Kind {
		// The next sync replaces it.
		s.State = StatePending
		return s
	}

	m, err := match.Compile(p.AssetPatterns)
	if err != nil {
		s.State = StateInvalid
		s.Err = err
		return s
	}

	for _, f := range entry.Files() {
		if f.Expired || !m.Match(f.Name) {
			continue
		}
		s.Files++
		name := entry.SaveName(f)
		if _, err := os.Stat(filepath.Join(p.TargetDir, name)); err != nil {
			s.Missing = append(s.Missing, name)
		}
	}

	s.State = StateSynced
	if len(s.Missing) > 0 {
		s.State = StateIncomplete
	}
	return s
}
