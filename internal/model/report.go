package model

import "time"

// FileError records a per-file failure that did not abort the run.
type FileError struct {
	Path Path   `yaml:"path"`
	Op   string `yaml:"op"`
	Err  string `yaml:"error"`
}

func (e FileError) String() string {
	return string(e.Path) + ": " + e.Op + ": " + e.Err
}

// FileResult holds the outcome of rewriting a single file.
type FileResult struct {
	Path         Path
	Modified     bool
	Replacements int
	Before       string
	After        string
}

// Summary aggregates the results of one run.
type Summary struct {
	FilesProcessed    int         `yaml:"files_processed"`
	FilesModified     int         `yaml:"files_modified"`
	TotalReplacements int         `yaml:"total_replacements"`
	BytesWritten      uint64      `yaml:"bytes_written"`
	Modified          []Path      `yaml:"modified,omitempty"`
	Errors            []FileError `yaml:"errors,omitempty"`
}

// Add folds a file result into the summary.
func (s *Summary) Add(result FileResult) {
	s.FilesProcessed++

	if !result.Modified {
		return
	}

	s.FilesModified++
	s.TotalReplacements += result.Replacements
	s.BytesWritten += uint64(len(result.After))
	s.Modified = append(s.Modified, result.Path)
}

// AddError records a per-file failure.
func (s *Summary) AddError(path Path, op string, err error) {
	s.Errors = append(s.Errors, FileError{Path: path, Op: op, Err: err.Error()})
}

// RunReport is the persisted form of a run, written when a report path is set.
type RunReport struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	Mode        Mode      `yaml:"mode"`
	Scope       string    `yaml:"scope,omitempty"`
	SourceDir   Path      `yaml:"source_dir"`
	Packages    []string  `yaml:"packages"`
	Summary     Summary   `yaml:"summary"`
}
