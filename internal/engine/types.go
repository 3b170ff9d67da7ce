package engine

import (
	"github.com/bianoble/ghmirror/internal/config"
	"github.com/bianoble/ghmirror/internal/ledger"
	"github.com/bianoble/ghmirror/internal/source"
)

// Process exit codes of a batch run.
const (
	ExitUnchanged = 0 // nothing changed
	ExitChanged   = 1 // at least one project adopted a new upstream state
	ExitFatal     = 2 // the configuration could not be loaded
)

// Outcome is the result of syncing one project.
type Outcome string

const (
	Unchanged Outcome = "unchanged"
	Changed   Outcome = "changed"
)

// File actions recorded in a ProjectResult.
const (
	ActionWritten = "written"
	ActionPending = "pending"
	ActionSkipped = "skipped"
	ActionExpired = "expired"
)

// FileAction represents an action taken on a single file during sync.
type FileAction struct {
	Name   string
	Action string
	Size   int64
}

// FileError is a failure to fetch a single file. It never aborts the sync.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return e.File + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// ProjectError represents an error associated with a specific project.
type ProjectError struct {
	Project string
	Err     error
}

func (e ProjectError) Error() string {
	return e.Project + ": " + e.Err.Error()
}

func (e ProjectError) Unwrap() error {
	return e.Err
}

// ProjectResult holds the outcome of syncing or checking one project.
type ProjectResult struct {
	Name      string
	Repo      string
	Kind      config.Kind
	TargetDir string

	Outcome Outcome
	// DryRun is set when the result comes from a check; a Changed outcome
	// then means an update is pending.
	DryRun bool

	Candidate source.Candidate // nil when the upstream state was not determined
	Previous  *ledger.Entry

	// Unavailable is set when the upstream state could not be determined
	// this cycle. The project is left untouched.
	Unavailable error

	Removed []string
	Written []FileAction
	Skipped []FileAction
	Errors  []FileError

	// Err is the project failure, if any.
	Err error
}

func newResult(p config.Project) *ProjectResult {
	return &ProjectResult{
		Name:      p.Name,
		Repo:      p.Repo,
		Kind:      p.Kind,
		TargetDir: p.TargetDir,
		Outcome:   Unchanged,
	}
}

// Summary aggregates the results of a batch run.
type Summary struct {
	RunID     string
	Changed   int
	Unchanged int
	Failed    int
	Results   []ProjectResult
}

func (s *Summary) add(r ProjectResult) {
	switch {
	case r.Err != nil:
		s.Failed++
	case r.Outcome == Changed:
		s.Changed++
	default:
		s.Unchanged++
	}
	s.Results = append(s.Results, r)
}

// ExitCode maps the summary to the process exit contract.
func (s *Summary) ExitCode() int {
	if s.Changed > 0 {
		return ExitChanged
	}
	return ExitUnchanged
}
