// Package source turns GitHub API responses into update candidates.
//
// A resolver that cannot determine the newest upstream state this cycle
// returns an error wrapping ErrUnavailable. That is never a statement that
// the project has no release or run; callers leave local state alone.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/github"
)

// ErrUnavailable reports that the newest upstream state could not be determined.
var ErrUnavailable = errors.New("upstream state unavailable")

// API is the subset of the GitHub client the resolvers use.
type API interface {
	LatestRelease(ctx context.Context, repo string) (*github.Release, error)
	ListReleases(ctx context.Context, repo string) ([]github.Release, error)
	ListRuns(ctx context.Context, repo, workflow string) ([]github.WorkflowRun, error)
	ListArtifacts(ctx context.Context, repo string, run github.WorkflowRun) ([]github.Artifact, error)
}

// Resolver finds the newest candidate for a project.
type Resolver interface {
	Resolve(ctx context.Context, p config.Project) (Candidate, error)
}

// SourceError represents an error associated with a specific project lookup.
type SourceError struct {
	Project   string
	Operation string
	Err       error
	Hint      string
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s: %s failed: %s", e.Project, e.Operation, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func unavailable(p config.Project, op string, err error) error {
	return &SourceError{Project: p.Name, Operation: op, Err: fmt.Errorf("%w: %w", ErrUnavailable, err), Hint: hintFor(err)}
}

func hintFor(err error) string {
	switch {
	case github.IsStatus(err, http.StatusUnauthorized):
		return "check the GitHub token"
	case github.IsStatus(err, http.StatusForbidden):
		return "rate limited or token lacks access; set GHMIRROR_TOKEN"
	case github.IsStatus(err, http.StatusNotFound):
		return "repository or workflow not found, or private without a token"
	}
	return ""
}

// ReleaseResolver resolves release projects.
type ReleaseResolver struct {
	API API
}

// Resolve returns the latest stable release, or the newest non-draft release
// of any kind when the project includes prereleases.
func (r *ReleaseResolver) Resolve(ctx context.Context, p config.Project) (Candidate, error) {
	var rel *github.Release

	if p.Prerelease() {
		rels, err := r.API.ListReleases(ctx, p.Repo)
		if err != nil {
			return nil, unavailable(p, "list releases", err)
		}
		for i := range rels {
			if !rels[i].Draft {
				rel = &rels[i]
				break
			}
		}
		if rel == nil {
			return nil, unavailable(p, "list releases", errors.New("no releases found"))
		}
	} else {
		latest, err := r.API.LatestRelease(ctx, p.Repo)
		if err != nil {
			return nil, unavailable(p, "latest release", err)
		}
		rel = latest
	}

	if rel.TagName == "" || rel.PublishedAt == "" {
		return nil, &SourceError{Project: p.Name, Operation: "resolve", Err: errors.New("release is missing tag_name or published_at")}
	}

	out := &Release{
		Tag:         rel.TagName,
		PublishedAt: rel.PublishedAt,
		HTMLURL:     rel.HTMLURL,
		Prerelease:  rel.Prerelease,
		Assets:      make([]File, 0, len(rel.Assets)),
	}
	for _, a := range rel.Assets {
		out.Assets = append(out.Assets, File{Name: a.Name, Size: a.Size, URL: a.BrowserDownloadURL})
	}
	return out, nil
}

// RunResolver resolves action projects.
type RunResolver struct {
	API API
}

// Resolve returns the most recent completed run and its artifacts.
func (r *RunResolver) Resolve(ctx context.Context, p config.Project) (Candidate, error) {
	runs, err := r.API.ListRuns(ctx, p.Repo, p.WorkflowFile)
	if err != nil {
		return nil, unavailable(p, "list runs", err)
	}
	if len(runs) == 0 {
		return nil, unavailable(p, "list runs", errors.New("no completed workflow runs found"))
	}

	run := runs[0]
	if run.ID == 0 {
		return nil, &SourceError{Project: p.Name, Operation: "resolve", Err: errors.New("workflow run is missing id")}
	}

	arts, err := r.API.ListArtifacts(ctx, p.Repo, run)
	if err != nil {
		return nil, unavailable(p, "list artifacts", err)
	}
	if len(arts) == 0 {
		return nil, unavailable(p, "list artifacts", fmt.Errorf("run #%d has no artifacts", run.RunNumber))
	}

	out := &Run{
		ID:        run.ID,
		Number:    run.RunNumber,
		CreatedAt: run.CreatedAt,
		Workflow:  run.Name,
		HTMLURL:   run.HTMLURL,
		Artifacts: make([]File, 0, len(arts)),
	}
	for _, a := range arts {
		out.Artifacts = append(out.Artifacts, File{
			Name:    a.Name,
			Size:    a.SizeInBytes,
			URL:     a.ArchiveDownloadURL,
			Archive: true,
			Expired: a.Expired,
		})
	}
	return out, nil
}

// Registry maps project kinds to Resolver implementations.
type Registry struct {
	resolvers map[config.Kind]Resolver
}

// NewRegistry creates a new empty resolver registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[config.Kind]Resolver)}
}

// NewGitHubRegistry returns a registry with the release and action resolvers
// backed by api.
func NewGitHubRegistry(api API) *Registry {
	reg := NewRegistry()
	reg.Register(config.KindRelease, &ReleaseResolver{API: api})
	reg.Register(config.KindAction, &RunResolver{API: api})
	return reg
}

// Register adds a resolver for the given kind.
func (r *Registry) Register(kind config.Kind, resolver Resolver) {
	r.resolvers[kind] = resolver
}

// Get returns the resolver for the given kind.
func (r *Registry) Get(kind config.Kind) (Resolver, error) {
	res, ok := r.resolvers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown project type '%s', supported types: %s", kind, r.supportedKinds())
	}
	return res, nil
}

// Resolve looks up the resolver for p's kind and runs it.
func (r *Registry) Resolve(ctx context.Context, p config.Project) (Candidate, error) {
	res, err := r.Get(p.Kind)
	if err != nil {
		return nil, err
	}
	return res.Resolve(ctx, p)
}

func (r *Registry) supportedKinds() string {
	kinds := make([]string, 0, len(r.resolvers))
	for k := range r.resolvers {
		kinds = append(kinds, string(k))
	}
	if len(kinds) == 0 {
		return "(none registered)"
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ", ")
}
