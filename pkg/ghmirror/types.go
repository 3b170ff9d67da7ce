package ghmirror

import "github.com/bianoble/ghmirror/internal/engine"

// Type aliases re-export engine result types as the public API.
// Users import "github.com/bianoble/ghmirror/pkg/ghmirror" and use
// ghmirror.Summary, ghmirror.ProjectResult, etc.

type Summary = engine.Summary
type ProjectResult = engine.ProjectResult
type ProjectStatus = engine.ProjectStatus
type FileAction = engine.FileAction
type FileError = engine.FileError
type ProjectError = engine.ProjectError
type Outcome = engine.Outcome

// Outcomes and exit codes.
const (
	Changed   = engine.Changed
	Unchanged = engine.Unchanged

	ExitUnchanged = engine.ExitUnchanged
	ExitChanged   = engine.ExitChanged
	ExitFatal     = engine.ExitFatal
)
