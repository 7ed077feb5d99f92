package domain

import (
	"path/filepath"
	"strings"

	m "relimport.dev/pkg/relimport/internal/model"
)

// RelativeImportPath returns the import path that resolves from the directory
// containing file to the package directory, descending into subPath when it is
// not empty. subPath uses forward slashes.
//
// The result always uses forward slashes and starts with "./" or "../". When
// the two locations cannot be related (for example one is absolute and the
// other is not), the bare "name/subPath" form is returned instead.
func RelativeImportPath(file m.Path, pkg m.Package, subPath string) string {
	target := string(pkg.Dir)
	if subPath != "" {
		target = filepath.Join(target, filepath.FromSlash(subPath))
	}

	rel, err := filepath.Rel(filepath.Dir(string(file)), target)
	if err != nil {
		if subPath != "" {
			return pkg.Name + "/" + subPath
		}

		return pkg.Name
	}

	rel = filepath.ToSlash(rel)
	if !isParentRelative(rel) {
		rel = "./" + rel
	}

	return rel
}

func isParentRelative(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}
