package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"relimport.dev/pkg/relimport/internal/adapter"
	m "relimport.dev/pkg/relimport/internal/model"
)

// Regular expression fragments for the recognised import shapes. Group 1 is
// the prefix up to and including the opening quote, group 2 the optional
// "/sub/path" and group 3 the closing quote.
const (
	fromPrefixPattern    = `from\s+['"]`
	dynamicPrefixPattern = `import\s*\(\s*['"]`
	subPathPattern       = `(/[^'"\r\n]+)?`
	closingQuotePattern  = `(['"])`
)

// Rewriter locates package import references in source text and turns them
// into path-relative imports.
type Rewriter interface {
	// FindImports returns every reference to a configured package in content,
	// in package order and, within a package, in source order.
	FindImports(content string) []m.ImportRef
	// Rewrite returns content with every reference replaced by the relative
	// path from file, together with the number of replacements made.
	Rewrite(file m.Path, content string) (string, int)
	// RewriteFile rewrites file in place. The file is written only when its
	// content changed.
	RewriteFile(file m.Path) (m.FileResult, error)
	// Options returns the configuration the rewriter was built with.
	Options() RewriterOptions
}

// RewriterOptions configures a Rewriter.
type RewriterOptions struct {
	Scope    string
	Mode     m.Mode
	Packages []m.Package
}

type packagePattern struct {
	pkg m.Package
	re  *regexp.Regexp
}

type rewriter struct {
	fsAdapter adapter.SourceFSAdapter
	options   RewriterOptions
	patterns  []packagePattern
}

// NewRewriter compiles the import patterns for every configured package.
func NewRewriter(fsAdapter adapter.SourceFSAdapter, options RewriterOptions) (Rewriter, error) {
	if len(options.Packages) == 0 {
		return nil, ErrNoPackages
	}

	if options.Mode == "" {
		options.Mode = m.ModeDeep
	}

	patterns := make([]packagePattern, 0, len(options.Packages))

	for _, pkg := range options.Packages {
		re, err := compileImportPattern(pkg.Specifier(options.Scope), options.Mode)
		if err != nil {
			return nil, fmt.Errorf("compile pattern for %s: %w", pkg.Name, err)
		}

		patterns = append(patterns, packagePattern{pkg: pkg, re: re})
	}

	return &rewriter{
		fsAdapter: fsAdapter,
		options:   options,
		patterns:  patterns,
	}, nil
}

func compileImportPattern(specifier string, mode m.Mode) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(specifier)

	switch mode {
	case m.ModePackage:
		// The empty group keeps the sub-path at index 2 in both modes.
		return regexp.Compile(`(` + fromPrefixPattern + `)` + quoted + `()` + closingQuotePattern)
	case m.ModeDeep:
		return regexp.Compile(`(` + fromPrefixPattern + `|` + dynamicPrefixPattern + `)` + quoted + subPathPattern + closingQuotePattern)
	}

	return nil, fmt.Errorf("%w %q", ErrInvalidMode, mode)
}

func (r *rewriter) Options() RewriterOptions {
	return r.options
}

func (r *rewriter) FindImports(content string) []m.ImportRef {
	var refs []m.ImportRef

	for _, p := range r.patterns {
		refs = append(refs, findPackageImports(p, content)...)
	}

	return refs
}

func findPackageImports(p packagePattern, content string) []m.ImportRef {
	matches := p.re.FindAllStringSubmatchIndex(content, -1)
	refs := make([]m.ImportRef, 0, len(matches))

	for _, loc := range matches {
		prefix := content[loc[2]:loc[3]]
		quote := content[loc[6]:loc[7]]

		// Go regexp has no back-references, so mismatched quotes are
		// filtered here.
		if prefix[len(prefix)-1:] != quote {
			continue
		}

		subPath := ""
		if loc[4] >= 0 {
			subPath = strings.TrimPrefix(content[loc[4]:loc[5]], "/")
		}

		refs = append(refs, m.ImportRef{
			Prefix:  prefix,
			Package: p.pkg,
			SubPath: subPath,
			Quote:   quote,
			Start:   loc[0],
			End:     loc[1],
		})
	}

	return refs
}

func (r *rewriter) Rewrite(file m.Path, content string) (string, int) {
	total := 0

	// Packages are rewritten one after another; the relative paths written
	// for one package never contain another package's specifier.
	for _, p := range r.patterns {
		refs := findPackageImports(p, content)
		if len(refs) == 0 {
			continue
		}

		content = replaceSpans(file, content, refs)
		total += len(refs)
	}

	return content, total
}

// replaceSpans substitutes each reference's own span, leaving identical text
// elsewhere in content untouched. refs must be sorted by Start.
func replaceSpans(file m.Path, content string, refs []m.ImportRef) string {
	var b strings.Builder

	b.Grow(len(content))

	last := 0

	for _, ref := range refs {
		b.WriteString(content[last:ref.Start])
		b.WriteString(ref.Prefix)
		b.WriteString(RelativeImportPath(file, ref.Package, ref.SubPath))
		b.WriteString(ref.Quote)

		last = ref.End
	}

	b.WriteString(content[last:])

	return b.String()
}

func (r *rewriter) RewriteFile(file m.Path) (m.FileResult, error) {
	result := m.FileResult{Path: file}

	info, err := r.fsAdapter.FileInfo(file)
	if err != nil {
		return result, &FileOpError{Op: OpStat, Path: file, Err: err}
	}

	data, err := r.fsAdapter.ReadFile(file)
	if err != nil {
		return result, &FileOpError{Op: OpRead, Path: file, Err: err}
	}

	original := string(data)

	rewritten, count := r.Rewrite(file, original)
	if rewritten == original {
		return result, nil
	}

	if err := r.fsAdapter.WriteFile(file, []byte(rewritten), info.Mode().Perm()); err != nil {
		return result, &FileOpError{Op: OpWrite, Path: file, Err: err}
	}

	slog.Debug("Rewrote imports", "file", file, "replacements", count)

	result.Modified = true
	result.Replacements = count
	result.Before = original
	result.After = rewritten

	return result, nil
}
