// Package model defines the data structures shared by the import rewriter.
package model

import (
	"errors"
	"fmt"
)

// Path represents a file system path.
type Path string

// Mode selects which import shapes the rewriter recognises.
type Mode string

const (
	// ModePackage rewrites only package-level `from "<pkg>"` references.
	ModePackage Mode = "package"

	// ModeDeep additionally rewrites sub-path references and dynamic
	// `import("<pkg>/...")` calls.
	ModeDeep Mode = "deep"
)

// ErrInvalidMode is returned for a mode other than ModePackage or ModeDeep.
var ErrInvalidMode = errors.New("unknown mode")

// ParseMode converts a user supplied string into a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModePackage:
		return ModePackage, nil
	case ModeDeep, "":
		return ModeDeep, nil
	}

	return "", fmt.Errorf("%w %q (want %q or %q)", ErrInvalidMode, value, ModePackage, ModeDeep)
}

// Package is a named virtual module whose sources live in Dir.
type Package struct {
	Name string
	Dir  Path
}

// Specifier returns the bare import string used to reference the package,
// e.g. "@scope/name" or just "name" when scope is empty.
func (p Package) Specifier(scope string) string {
	if scope == "" {
		return p.Name
	}

	return scope + "/" + p.Name
}
