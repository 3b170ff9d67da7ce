package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/ghmirror/internal/config"
)

func newTestChecker(t *testing.T, gh *fakeGitHub) (*CheckEngine, *SyncEngine) {
	t.Helper()
	eng, _ := newTestEngine(t, gh)
	return &CheckEngine{Registry: eng.Registry, Ledger: eng.Ledger, Logger: eng.Logger}, eng
}

func TestCheckPendingWithoutLedger(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.setRun(900, 3, asset{"core", "c"}, asset{"docs", "d"})
	chk, _ := newTestChecker(t, gh)
	p := testProject(t, config.KindAction, "core")

	res, err := chk.Check(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, Changed, res.Outcome)
	assert.True(t, res.DryRun)
	assert.Nil(t, res.Previous)
	assert.Equal(t, []FileAction{{Name: "core.zip", Action: ActionPending, Size: 1}}, res.Written)
	assert.Equal(t, []FileAction{{Name: "docs", Action: ActionSkipped, Size: 1}}, res.Skipped)
	assert.Equal(t, 0, gh.downloadCount())

	_, err = os.Stat(p.TargetDir)
	assert.True(t, os.IsNotExist(err))
}

func TestCheckUpToDate(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.setRelease("v1.0.0", "2024-01-01T00:00:00Z", asset{"app.apk", "apk"})
	chk, eng := newTestChecker(t, gh)
	p := testProject(t, config.KindRelease)
	mustSync(t, eng, p)

	res, err := chk.Check(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res.Outcome)
	require.NotNil(t, res.Previous)
	assert.Equal(t, "v1.0.0", res.Previous.TagName)
	assert.Empty(t, res.Written)
}

func TestCheckReportsOldAndNew(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.setRelease("v1.0.0", "2024-01-01T00:00:00Z", asset{"app.apk", "apk"})
	chk, eng := newTestChecker(t, gh)
	p := testProject(t, config.KindRelease)
	mustSync(t, eng, p)

	gh.setRelease("v1.1.0", "2024-02-01T00:00:00Z", asset{"app.apk", "new"})
	res, err := chk.Check(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, Changed, res.Outcome)
	assert.Equal(t, "v1.0.0", res.Previous.Version())
	assert.Equal(t, "v1.1.0", res.Candidate.Version())
	assert.Equal(t, "apk", readFile(t, filepath.Join(p.TargetDir, "app.apk")), "check must not download")
}

func TestCheckUnavailable(t *testing.T) {
	gh := newFakeGitHub(t)
	chk, _ := newTestChecker(t, gh)

	res, err := chk.Check(context.Background(), testProject(t, config.KindRelease))
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Error(t, res.Unavailable)
}

func TestCheckLedgerReadFailure(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.setRelease("v1.0.0", "2024-01-01T00:00:00Z", asset{"app.apk", "apk"})
	chk, eng := newTestChecker(t, gh)
	p := testProject(t, config.KindRelease)
	mustSync(t, eng, p)

	chk.Ledger.Fs = failingReadFs{Fs: chk.Ledger.Fs, path: filepath.Join(p.TargetDir, ".version.json")}

	res, err := chk.Check(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Empty(t, res.Written)
}
