package source

import (
	"fmt"
	"strings"

	"github.com/bianoble/ghmirror/internal/config"
)

// File is one downloadable file of a candidate.
type File struct {
	Name string
	Size int64
	URL  string

	// Archive is set for workflow artifacts, which GitHub always serves zipped.
	Archive bool
	// Expired artifacts are still listed but can no longer be downloaded.
	Expired bool
}

// Candidate is the newest upstream state observed for a project. It is either
// a *Release or a *Run.
type Candidate interface {
	// Kind returns the project kind that produced the candidate.
	Kind() config.Kind
	// Files returns the candidate's files in upstream listing order.
	Files() []File
	// SaveName returns the local file name f is stored under.
	SaveName(f File) string
	// Version returns a short human label: a tag or "run #N".
	Version() string

	candidate()
}

// Release is a published, tagged GitHub release.
type Release struct {
	Tag         string
	PublishedAt string // RFC 3339, as reported upstream
	HTMLURL     string
	Prerelease  bool
	Assets      []File
}

func (*Release) Kind() config.Kind { return config.KindRelease }
func (r *Release) Files() []File { return r.Assets }
func (*Release) SaveName(f File) string { return f.Name }
func (r *Release) Version() string { return r.Tag }
func (*Release) candidate() {}

func (r *Release) String() string {
	return fmt.Sprintf("release %s (published %s)", r.Tag, r.PublishedAt)
}

// Run is a completed GitHub Actions workflow run and its artifacts.
type Run struct {
	ID        int64
	Number    int64
	CreatedAt string // RFC 3339, as reported upstream
	Workflow  string
	HTMLURL   string
	Artifacts []File
}

func (*Run) Kind() config.Kind { return config.KindAction }
func (r *Run) Files() []File { return r.Artifacts }
func (r *Run) Version() string { return fmt.Sprintf("run #%d", r.Number) }
func (*Run) candidate() {}

func (*Run) SaveName(f File) string { return ArchiveName(f.Name) }

// ArchiveName appends ".zip" to an artifact name that does not already end
// with it, ignoring case.
func ArchiveName(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".zip") {
		return name
	}
	return name + ".zip"
}

func (r *Run) String() string {
	return fmt.Sprintf("run #%d (id %d, %s, created %s)", r.Number, r.ID, r.Workflow, r.CreatedAt)
}
