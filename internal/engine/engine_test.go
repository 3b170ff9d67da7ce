package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/github"
	"github.com/bianoble/ghmirror/internal/ledger"
	"github.com/bianoble/ghmirror/internal/source"
)

// fakeGitHub serves the release, run and download endpoints for owner/app.
type fakeGitHub struct {
	srv *httptest.Server

	mu        sync.Mutex
	release   *github.Release
	runs      []github.WorkflowRun
	artifacts []github.Artifact
	files     map[string]string // download path -> body
	downloads []string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{files: make(map[string]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/app/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.release == nil {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(f.release)
	})
	mux.HandleFunc("/repos/owner/app/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(github.WorkflowRunList{TotalCount: len(f.runs), WorkflowRuns: f.runs})
	})
	mux.HandleFunc("/repos/owner/app/actions/runs/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(github.ArtifactList{TotalCount: len(f.artifacts), Artifacts: f.artifacts})
	})
	mux.HandleFunc("/download/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.downloads = append(f.downloads, r.URL.Path)
		body, ok := f.files[r.URL.Path]
		if !ok {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		_, _ = io.WriteString(w, body)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// asset describes a release asset or artifact; an empty body makes the
// download fail.
type asset struct {
	name string
	body string
}

func (f *fakeGitHub) setRelease(tag, published string, assets ...asset) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rel := &github.Release{TagName: tag, PublishedAt: published}
	for _, a := range assets {
		path := "/download/" + tag + "/" + a.name
		if a.body != "" {
			f.files[path] = a.body
		}
		rel.Assets = append(rel.Assets, github.Asset{Name: a.name, Size: int64(len(a.body)), BrowserDownloadURL: f.srv.URL + path})
	}
	f.release = rel
}

func (f *fakeGitHub) setRun(id, number int64, artifacts ...asset) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = []github.WorkflowRun{{ID: id, RunNumber: number, Name: "Core", CreatedAt: "2024-03-01T00:00:00Z"}}
	f.artifacts = nil
	for i, a := range artifacts {
		path := "/download/run/" + a.name
		if a.body != "" {
			f.files[path] = a.body
		}
		f.artifacts = append(f.artifacts, github.Artifact{ID: int64(i + 1), Name: a.name, SizeInBytes: int64(len(a.body)), ArchiveDownloadURL: f.srv.URL + path})
	}
}

func (f *fakeGitHub) expireArtifact(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.artifacts {
		if f.artifacts[i].Name == name {
			f.artifacts[i].Expired = true
		}
	}
}

func (f *fakeGitHub) downloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloads)
}

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, gh *fakeGitHub) (*SyncEngine, *test.Hook) {
	t.Helper()
	client := &github.Client{BaseURL: gh.srv.URL, HTTP: gh.srv.Client()}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	return &SyncEngine{
		Registry:   source.NewGitHubRegistry(client),
		Ledger:     &ledger.Store{Fs: afero.NewOsFs(), Clock: clockwork.NewFakeClockAt(fixedNow), Logger: logger},
		Downloader: client,
		Logger:     logger,
	}, hook
}

func testProject(t *testing.T, kind config.Kind, patterns ...string) config.Project {
	t.Helper()
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	return config.Project{
		Name:          "P",
		Repo:          "owner/app",
		Kind:          kind,
		TargetDir:     filepath.Join(t.TempDir(), "P"),
		AssetPatterns: patterns,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func loadEntry(t *testing.T, dir string) *ledger.Entry {
	t.Helper()
	e, ok, err := (&ledger.Store{Fs: afero.NewOsFs()}).Load(dir)
	if err != nil {
		t.Fatalf("loading ledger: %v", err)
	}
	if !ok {
		return nil
	}
	return e
}

func hasLog(hook *test.Hook, level logrus.Level, substr string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// failingReadFs fails every open of path with an I/O error.
type failingReadFs struct {
	afero.Fs
	path string
}

func (f failingReadFs) Open(name string) (afero.File, error) {
	if name == f.path {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EIO}
	}
	return f.Fs.Open(name)
}

func (f failingReadFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == f.path {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EIO}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func mustSync(t *testing.T, eng *SyncEngine, p config.Project) *ProjectResult {
	t.Helper()
	res, err := eng.Sync(context.Background(), p)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return res
}
