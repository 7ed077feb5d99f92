// Package controller provides output adapters for displaying rewrite progress and results.
package controller

import (
	"context"

	m "relimport.dev/pkg/relimport/internal/model"
)

// maxListedErrors caps how many per-file errors the summary prints.
const maxListedErrors = 10

// StartInfo describes a run before any file is touched.
type StartInfo struct {
	ProjectDir m.Path
	SourceDir  m.Path
	Scope      string
	Mode       m.Mode
	Packages   []m.Package
}

// UI defines the interface for reporting a rewrite run.
// Implementations can use different output methods (plain text, styled, etc).
type UI interface {
	DisplayStart(ctx context.Context, info StartInfo)
	DisplayWarning(ctx context.Context, message string)
	DisplayFileRewritten(ctx context.Context, displayPath m.Path, result m.FileResult)
	DisplayDiff(ctx context.Context, displayPath m.Path, before, after string) error
	DisplayFileError(ctx context.Context, fileErr m.FileError)
	DisplaySummary(ctx context.Context, summary m.Summary)
}
