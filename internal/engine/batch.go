package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bianoble/ghmirror/internal/config"
)

// BatchEngine runs every configured project in order. It is the single place
// project failures are caught, so one broken project never stops the others.
//
// A batch must not run concurrently with another batch over the same
// configuration; nothing here locks the target directories.
type BatchEngine struct {
	Syncer  *SyncEngine
	Checker *CheckEngine
	Logger  logrus.FieldLogger

	// DryRun checks every project instead of syncing it.
	DryRun bool
}

// Run processes cfg.Projects sequentially and returns the aggregated summary.
func (b *BatchEngine) Run(ctx context.Context, cfg *config.Config) *Summary {
	sum := &Summary{RunID: uuid.NewString()}

	logger := b.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithField("run_id", sum.RunID)

	var syncer *SyncEngine
	if b.Syncer != nil {
		s := *b.Syncer
		s.Logger = log
		syncer = &s
	}
	var checker *CheckEngine
	switch {
	case b.Checker != nil:
		c := *b.Checker
		c.Logger = log
		checker = &c
	case syncer != nil:
		checker = &CheckEngine{Registry: syncer.Registry, Ledger: syncer.Ledger, Logger: log}
	}

	log.WithFields(logrus.Fields{"projects": len(cfg.Projects), "dry_run": b.DryRun}).Info("Starting sync run")

	owners := make(map[string]string)
	for _, raw := range cfg.Projects {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Run cancelled")
			break
		}

		res := b.runOne(ctx, cfg, raw, owners, syncer, checker)
		if res.Err != nil {
			log.WithField("project", res.Name).WithError(res.Err).Error("Project failed")
		}
		sum.add(*res)
	}

	log.WithFields(logrus.Fields{
		"changed":   sum.Changed,
		"unchanged": sum.Unchanged,
		"failed":    sum.Failed,
	}).Info("Sync run finished")

	return sum
}

func (b *BatchEngine) runOne(ctx context.Context, cfg *config.Config, raw config.Project, owners map[string]string, syncer *SyncEngine, checker *CheckEngine) (res *ProjectResult) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(raw, fmt.Errorf("panic: %v\n%s", r, debug.Stack()))
		}
	}()

	p, err := cfg.Prepare(raw)
	if err != nil {
		return failed(p, err)
	}

	if other, dup := owners[p.TargetDir]; dup {
		return failed(p, fmt.Errorf("target_dir %s is already used by project '%s'", p.TargetDir, other))
	}
	owners[p.TargetDir] = p.Name

	switch {
	case b.DryRun && checker == nil:
		return failed(p, errors.New("no check engine configured"))
	case b.DryRun:
		res, err = checker.Check(ctx, p)
	case syncer == nil:
		return failed(p, errors.New("no sync engine configured"))
	default:
		res, err = syncer.Sync(ctx, p)
	}
	if err != nil {
		res.Outcome = Unchanged
		res.Err = ProjectError{Project: p.Name, Err: err}
	}
	return res
}

func failed(p config.Project, err error) *ProjectResult {
	res := newResult(p)
	res.Err = ProjectError{Project: p.Name, Err: err}
	return res
}
