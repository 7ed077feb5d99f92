package domain

import (
	"errors"
	"fmt"

	m "relimport.dev/pkg/relimport/internal/model"
)

var (
	// ErrSourceNotFound is returned when the source directory is missing.
	ErrSourceNotFound = errors.New("source directory not found")
	// ErrNoPackages is returned when no package names are configured.
	ErrNoPackages = errors.New("no packages configured")
	// ErrInvalidMode is returned for an unrecognised rewrite mode.
	ErrInvalidMode = m.ErrInvalidMode
)

// Operations reported by FileOpError.
const (
	OpRead  = "read"
	OpWrite = "write"
	OpStat  = "stat"
	OpWalk  = "walk"
)

// FileOpError wraps a failure of a single filesystem operation on one file.
type FileOpError struct {
	Op   string
	Path m.Path
	Err  error
}

func (e *FileOpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileOpError) Unwrap() error {
	return e.Err
}
