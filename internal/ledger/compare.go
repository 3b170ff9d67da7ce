package ledger

import (
	"fmt"
	"time"

	version "github.com/hashicorp/go-version"

	"github.com/bianoble/ghmirror/internal/source"
)

// Compare reports whether cand should replace prev. A nil prev always needs
// an update, as does a change of kind. Releases are adopted only when
// published strictly later. Runs are adopted whenever the run id differs,
// whatever their ordering.
func Compare(prev *Entry, cand source.Candidate) (bool, error) {
	if prev == nil || prev.Type != cand.Kind() {
		return true, nil
	}

	switch c := cand.(type) {
	case *source.Release:
		oldTime, err := parseTimestamp(prev.PublishedAt)
		if err != nil {
			return false, fmt.Errorf("recorded published_at: %w", err)
		}
		newTime, err := parseTimestamp(c.PublishedAt)
		if err != nil {
			return false, fmt.Errorf("release %s published_at: %w", c.Tag, err)
		}
		return newTime.After(oldTime), nil
	case *source.Run:
		return c.ID != prev.RunID, nil
	default:
		return false, fmt.Errorf("unsupported candidate %T", cand)
	}
}

// NewEntry builds the entry recording cand as adopted at now.
func NewEntry(cand source.Candidate, now time.Time) (*Entry, error) {
	e := &Entry{
		Type:     cand.Kind(),
		SyncTime: now.UTC().Format(time.RFC3339),
	}

	records := make([]FileRecord, 0, len(cand.Files()))
	for _, f := range cand.Files() {
		records = append(records, FileRecord{Name: f.Name, Size: f.Size, DownloadURL: f.URL, Expired: f.Expired})
	}

	switch c := cand.(type) {
	case *source.Release:
		e.TagName = c.Tag
		e.PublishedAt = c.PublishedAt
		e.Assets = records
	case *source.Run:
		e.RunID = c.ID
		e.RunNumber = c.Number
		e.CreatedAt = c.CreatedAt
		e.WorkflowName = c.Workflow
		e.Artifacts = records
	default:
		return nil, fmt.Errorf("unsupported candidate %T", cand)
	}
	return e, nil
}

// TagRegressed reports whether newTag is a lower version than prevTag. Tags
// that do not parse as versions never regress.
func TagRegressed(prevTag, newTag string) bool {
	prev, err := version.NewVersion(prevTag)
	if err != nil {
		return false
	}
	next, err := version.NewVersion(newTag)
	if err != nil {
		return false
	}
	return next.LessThan(prev)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
