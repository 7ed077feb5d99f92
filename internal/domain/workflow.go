// Package domain implements the import rewriting workflow: locating package
// references, computing relative paths and walking the source tree.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"relimport.dev/pkg/relimport/internal/adapter"
	"relimport.dev/pkg/relimport/internal/controller"
	m "relimport.dev/pkg/relimport/internal/model"
)

// DefaultInclude lists the file name globs rewritten when none are configured.
var DefaultInclude = []string{"*.ts", "*.tsx"}

// DefaultExcludeDirs lists directory names that are never descended into.
var DefaultExcludeDirs = []string{"node_modules", ".git"}

// RunArgs contains the arguments for a rewrite run.
type RunArgs struct {
	// ProjectDir is the base used for display paths.
	ProjectDir  m.Path
	SourceDir   m.Path
	Include     []string
	ExcludeDirs []string
	ShowDiff    bool
	// Report, when set, receives a YAML copy of the summary.
	Report m.Path
}

// Workflow drives a full rewrite of a source tree.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (m.Summary, error)
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI
	Rewriter
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	rewriter Rewriter,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		Rewriter:        rewriter,
	}
}

// Run walks args.SourceDir once, rewriting every matching file. Failures on
// individual files are recorded in the summary and the walk continues; only
// a missing source directory or a failure to save the report abort the run.
func (w *workflow) Run(ctx context.Context, args RunArgs) (m.Summary, error) {
	var summary m.Summary

	args = w.withDefaults(args)

	info, err := w.FileInfo(args.SourceDir)
	if err != nil || !info.IsDir() {
		slog.Error("Source directory not found", "source", args.SourceDir, "error", err)
		return summary, fmt.Errorf("%w: %s", ErrSourceNotFound, args.SourceDir)
	}

	w.DisplayStart(ctx, controller.StartInfo{
		ProjectDir: args.ProjectDir,
		SourceDir:  args.SourceDir,
		Scope:      w.Options().Scope,
		Mode:       w.Options().Mode,
		Packages:   w.Options().Packages,
	})

	w.checkPackageDirs(ctx)

	slog.Info("Processing files", "source", args.SourceDir, "packages", len(w.Options().Packages))

	walkErr := w.Walk(args.SourceDir, args.ExcludeDirs, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			w.recordError(ctx, &summary, &FileOpError{Op: OpWalk, Path: m.Path(path), Err: err})

			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if info.IsDir() || !matchesAny(info.Name(), args.Include) {
			return nil
		}

		w.processFile(ctx, args, m.Path(path), &summary)

		return nil
	})
	if walkErr != nil {
		return summary, fmt.Errorf("walk %s: %w", args.SourceDir, walkErr)
	}

	slog.Info("Rewrite finished",
		"processed", summary.FilesProcessed,
		"modified", summary.FilesModified,
		"replacements", summary.TotalReplacements,
		"errors", len(summary.Errors))

	w.DisplaySummary(ctx, summary)

	if args.Report != "" {
		if err := w.saveReport(args, summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (w *workflow) withDefaults(args RunArgs) RunArgs {
	if len(args.Include) == 0 {
		args.Include = DefaultInclude
	}

	if args.ExcludeDirs == nil {
		args.ExcludeDirs = DefaultExcludeDirs
	}

	if args.ProjectDir == "" {
		args.ProjectDir = m.Path(filepath.Dir(string(args.SourceDir)))
	}

	return args
}

func (w *workflow) processFile(ctx context.Context, args RunArgs, path m.Path, summary *m.Summary) {
	result, err := w.RewriteFile(path)
	summary.Add(result)

	if err != nil {
		w.recordError(ctx, summary, err)
		return
	}

	if !result.Modified {
		return
	}

	display := w.displayPath(args.ProjectDir, path)
	w.DisplayFileRewritten(ctx, display, result)

	if args.ShowDiff {
		if err := w.DisplayDiff(ctx, display, result.Before, result.After); err != nil {
			slog.Warn("Failed to render diff", "file", path, "error", err)
		}
	}
}

func (w *workflow) recordError(ctx context.Context, summary *m.Summary, err error) {
	op, path := "", m.Path("")

	var opErr *FileOpError
	if errors.As(err, &opErr) {
		op, path = opErr.Op, opErr.Path
		err = opErr.Err
	}

	slog.Error("File skipped", "file", path, "op", op, "error", err)

	summary.AddError(path, op, err)
	w.DisplayFileError(ctx, summary.Errors[len(summary.Errors)-1])
}

func (w *workflow) checkPackageDirs(ctx context.Context) {
	for _, pkg := range w.Options().Packages {
		info, err := w.FileInfo(pkg.Dir)
		if err == nil && info.IsDir() {
			continue
		}

		slog.Warn("Package directory not found", "package", pkg.Name, "dir", pkg.Dir)
		w.DisplayWarning(ctx, fmt.Sprintf("Package directory not found: %s", pkg.Dir))
	}
}

func (w *workflow) displayPath(projectDir, path m.Path) m.Path {
	rel, err := w.RelPath(projectDir, path)
	if err != nil {
		return path
	}

	return rel
}

func (w *workflow) saveReport(args RunArgs, summary m.Summary) error {
	packages := make([]string, 0, len(w.Options().Packages))
	for _, pkg := range w.Options().Packages {
		packages = append(packages, pkg.Name)
	}

	report := m.RunReport{
		GeneratedAt: time.Now().UTC(),
		Mode:        w.Options().Mode,
		Scope:       w.Options().Scope,
		SourceDir:   args.SourceDir,
		Packages:    packages,
		Summary:     summary,
	}

	if err := w.SaveReport(args.Report, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	return nil
}

func matchesAny(name string, globs []string) bool {
	for _, glob := range globs {
		if ok, err := filepath.Match(glob, name); err == nil && ok {
			return true
		}
	}

	return false
}
