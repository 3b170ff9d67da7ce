package ledger

import (
	"fmt"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/source"
)

// FileName is the ledger file kept in every target directory.
const FileName = ".version.json"

// Entry records the last upstream state adopted into a target directory.
// Field names match ledgers written by earlier mirror scripts.
type Entry struct {
	Type config.Kind `json:"type"`

	// Release projects.
	TagName     string `json:"tag_name,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`

	// Action projects.
	RunID        int64  `json:"run_id,omitempty"`
	RunNumber    int64  `json:"run_number,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	WorkflowName string `json:"workflow_name,omitempty"`

	SyncTime string `json:"sync_time"`

	Assets    []FileRecord `json:"assets,omitempty"`
	Artifacts []FileRecord `json:"artifacts,omitempty"`
}

// FileRecord describes one upstream file as it was listed at sync time.
type FileRecord struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
	Expired     bool   `json:"expired,omitempty"`
}

// Files returns the recorded file list for the entry's kind.
func (e *Entry) Files() []FileRecord {
	if e.Type == config.KindAction {
		return e.Artifacts
	}
	return e.Assets
}

// SaveName returns the local name a recorded file was stored under.
func (e *Entry) SaveName(f FileRecord) string {
	if e.Type == config.KindAction {
		return source.ArchiveName(f.Name)
	}
	return f.Name
}

// Version returns a short human label for the recorded state.
func (e *Entry) Version() string {
	switch e.Type {
	case config.KindRelease:
		return e.TagName
	case config.KindAction:
		return fmt.Sprintf("run #%d", e.RunNumber)
	}
	return "unknown"
}
