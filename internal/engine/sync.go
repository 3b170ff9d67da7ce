package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/ledger"
	"github.com/bianoble/ghmirror/internal/match"
	"github.com/bianoble/ghmirror/internal/sandbox"
	"github.com/bianoble/ghmirror/internal/source"
)

// Downloader streams the body at url into w.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// SyncEngine adopts new upstream states into target directories.
type SyncEngine struct {
	Registry   *source.Registry
	Ledger     *ledger.Store
	Downloader Downloader
	Logger     logrus.FieldLogger
}

// Sync brings one project up to date.
//
// When the ledger shows the newest upstream state is already adopted nothing
// is touched. Otherwise every entry of the target directory except the ledger
// is removed, matching files are downloaded one by one, and the ledger is
// rewritten once the pass is over. Failed downloads are recorded in the
// result and do not stop the pass; the returned error is reserved for
// failures that leave the old ledger in charge.
func (e *SyncEngine) Sync(ctx context.Context, p config.Project) (*ProjectResult, error) {
	res := newResult(p)
	log := projectLogger(e.Logger, p)

	cand, prev, needs, err := evaluate(ctx, e.Registry, e.Ledger, p, res, log)
	if err != nil || cand == nil || !needs {
		return res, err
	}

	log = log.WithField("version", cand.Version())
	if prev != nil {
		log.WithField("from", prev.Version()).Info("New upstream state found")
	} else {
		log.Info("No previous sync, mirroring")
	}
	warnRegression(log, prev, cand)

	m, err := match.Compile(p.AssetPatterns)
	if err != nil {
		return res, err
	}
	log.WithField("patterns", m.Patterns()).Debug("Selecting files")

	if err := os.MkdirAll(p.TargetDir, 0755); err != nil {
		return res, fmt.Errorf("creating target directory: %w", err)
	}

	removed, err := sandbox.ResetDir(p.TargetDir, ledger.FileName)
	res.Removed = removed
	if err != nil {
		return res, fmt.Errorf("resetting target directory: %w", err)
	}
	if len(removed) > 0 {
		log.WithField("count", len(removed)).Debug("Removed previous files")
	}

	for _, f := range cand.Files() {
		if !m.Match(f.Name) {
			res.Skipped = append(res.Skipped, FileAction{Name: f.Name, Action: ActionSkipped, Size: f.Size})
			continue
		}
		if f.Expired {
			log.WithField("file", f.Name).Warn("Artifact has expired upstream, skipping")
			res.Skipped = append(res.Skipped, FileAction{Name: f.Name, Action: ActionExpired, Size: f.Size})
			continue
		}

		name := cand.SaveName(f)
		flog := log.WithField("file", name)
		if strings.EqualFold(name, ledger.FileName) {
			err := fmt.Errorf("file name %q is reserved for the ledger", name)
			flog.WithError(err).Error("Download failed")
			res.Errors = append(res.Errors, FileError{File: name, Err: err})
			continue
		}
		flog.Info("Downloading")

		n, err := e.download(ctx, p.TargetDir, name, f.URL)
		if err != nil {
			flog.WithError(err).Error("Download failed")
			res.Errors = append(res.Errors, FileError{File: name, Err: err})
			continue
		}
		flog.WithField("bytes", n).Debug("Download complete")
		res.Written = append(res.Written, FileAction{Name: name, Action: ActionWritten, Size: n})
	}

	if _, err := e.Ledger.Save(p.TargetDir, cand); err != nil {
		return res, fmt.Errorf("writing ledger: %w", err)
	}

	log.WithFields(logrus.Fields{"written": len(res.Written), "failed": len(res.Errors)}).Info("Sync complete")
	res.Outcome = Changed
	return res, nil
}

func (e *SyncEngine) download(ctx context.Context, dir, name, url string) (int64, error) {
	var n int64
	_, err := sandbox.SafeWriteStream(dir, name, 0644, func(w io.Writer) error {
		var err error
		n, err = e.Downloader.Download(ctx, url, w)
		return err
	})
	return n, err
}

// warnRegression logs when a newer release carries a lower version tag. The
// release is still adopted.
func warnRegression(log logrus.FieldLogger, prev *ledger.Entry, cand source.Candidate) {
	rel, ok := cand.(*source.Release)
	if !ok || prev == nil || prev.Type != config.KindRelease {
		return
	}
	if ledger.TagRegressed(prev.TagName, rel.Tag) {
		log.WithFields(logrus.Fields{"from": prev.TagName, "to": rel.Tag}).Warn("Newer release has a lower version tag")
	}
}
