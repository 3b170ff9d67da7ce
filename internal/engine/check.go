package engine

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/ledger"
	"github.com/bianoble/ghmirror/internal/match"
	"github.com/bianoble/ghmirror/internal/source"
)

// CheckEngine reports pending updates without touching any target directory.
type CheckEngine struct {
	Registry *source.Registry
	Ledger   *ledger.Store
	Logger   logrus.FieldLogger
}

// Check resolves the newest upstream state of p and compares it with the
// ledger. A pending update is reported as a Changed outcome with DryRun set;
// the files that would be downloaded are listed as pending.
func (e *CheckEngine) Check(ctx context.Context, p config.Project) (*ProjectResult, error) {
	res := newResult(p)
	res.DryRun = true
	log := projectLogger(e.Logger, p)

	cand, prev, needs, err := evaluate(ctx, e.Registry, e.Ledger, p, res, log)
	if err != nil || cand == nil || !needs {
		return res, err
	}

	m, err := match.Compile(p.AssetPatterns)
	if err != nil {
		return res, err
	}
	for _, f := range cand.Files() {
		switch {
		case !m.Match(f.Name):
			res.Skipped = append(res.Skipped, FileAction{Name: f.Name, Action: ActionSkipped, Size: f.Size})
		case f.Expired:
			res.Skipped = append(res.Skipped, FileAction{Name: f.Name, Action: ActionExpired, Size: f.Size})
		default:
			res.Written = append(res.Written, FileAction{Name: cand.SaveName(f), Action: ActionPending, Size: f.Size})
		}
	}

	log.WithField("from", describe(prev)).Info("Update pending")
	res.Outcome = Changed
	return res, nil
}

// evaluate resolves p and compares the candidate with the recorded entry.
// A nil candidate with a nil error means upstream was unavailable; res
// records why.
func evaluate(ctx context.Context, reg *source.Registry, store *ledger.Store, p config.Project, res *ProjectResult, log logrus.FieldLogger) (source.Candidate, *ledger.Entry, bool, error) {
	cand, err := reg.Resolve(ctx, p)
	if err != nil {
		if errors.Is(err, source.ErrUnavailable) {
			log.WithError(err).Warn("Could not determine the latest upstream state, leaving the project untouched")
			res.Unavailable = err
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	res.Candidate = cand

	prev, needs, err := store.NeedsUpdate(p.TargetDir, cand)
	res.Previous = prev
	if err != nil {
		return cand, prev, false, err
	}
	if !needs {
		log.WithField("version", cand.Version()).Info("Up to date")
	}
	return cand, prev, needs, nil
}

func projectLogger(l logrus.FieldLogger, p config.Project) logrus.FieldLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return l.WithFields(logrus.Fields{"project": p.Name, "repo": p.Repo})
}

func describe(e *ledger.Entry) string {
	if e == nil {
		return "(none)"
	}
	return e.Version()
}
