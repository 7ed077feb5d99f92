package domain

import (
	"fmt"
	"strings"

	"relimport.dev/pkg/relimport/internal/adapter"
	m "relimport.dev/pkg/relimport/internal/model"
)

// ResolvePackages turns package names into packages rooted under dir. Each
// entry may hold several comma separated names. Names are trimmed, empty
// names and duplicates are dropped, and dir is made absolute so every file
// in the tree can be related to it.
func ResolvePackages(fsAdapter adapter.SourceFSAdapter, dir m.Path, names []string) ([]m.Package, error) {
	absDir, err := fsAdapter.AbsPath(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve packages dir %s: %w", dir, err)
	}

	seen := make(map[string]bool, len(names))
	packages := make([]m.Package, 0, len(names))

	for _, entry := range names {
		for _, name := range strings.Split(entry, ",") {
			name = strings.Trim(strings.TrimSpace(name), "/")
			if name == "" || seen[name] {
				continue
			}

			seen[name] = true

			packages = append(packages, m.Package{
				Name: name,
				Dir:  fsAdapter.JoinPath(string(absDir), name),
			})
		}
	}

	if len(packages) == 0 {
		return nil, ErrNoPackages
	}

	return packages, nil
}
