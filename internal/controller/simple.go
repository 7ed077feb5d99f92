package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	m "relimport.dev/pkg/relimport/internal/model"
)

const (
	bannerWidth  = 80
	diffContext  = 1
	modifiedMark = "✓"
	warningMark  = "!"
	errorMark    = "✗"
)

// SimpleUI implements UI by printing to the cobra command's output stream.
type SimpleUI struct {
	cmd *cobra.Command

	okStyle   lipgloss.Style
	warnStyle lipgloss.Style
	errStyle  lipgloss.Style
	dimStyle  lipgloss.Style
}

// NewSimpleUI creates a new SimpleUI. Colors are only emitted when the
// command's output stream is a terminal.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	renderer := lipgloss.NewRenderer(cmd.OutOrStdout())

	return &SimpleUI{
		cmd:       cmd,
		okStyle:   renderer.NewStyle().Foreground(lipgloss.Color("2")),
		warnStyle: renderer.NewStyle().Foreground(lipgloss.Color("3")),
		errStyle:  renderer.NewStyle().Foreground(lipgloss.Color("1")),
		dimStyle:  renderer.NewStyle().Faint(true),
	}
}

// DisplayStart prints the run banner.
func (s *SimpleUI) DisplayStart(ctx context.Context, info StartInfo) {
	if err := ctx.Err(); err != nil {
		return
	}

	names := make([]string, 0, len(info.Packages))
	for _, pkg := range info.Packages {
		names = append(names, pkg.Specifier(info.Scope))
	}

	rule := strings.Repeat("=", bannerWidth)

	s.printf("%s\n", rule)
	s.printf("Replacing %s imports with local relative imports\n", describeMode(info.Mode))
	s.printf("%s\n", rule)
	s.printf("Working directory: %s\n", info.ProjectDir)
	s.printf("Source directory:  %s\n", info.SourceDir)
	s.printf("Packages to replace: %s\n", strings.Join(names, ", "))
	s.printf("%s\n\n", rule)
}

// DisplayWarning prints a non-fatal problem.
func (s *SimpleUI) DisplayWarning(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s Warning: %s\n", s.warnStyle.Render(warningMark), message)
}

// DisplayFileRewritten prints the per-file line for a modified file.
func (s *SimpleUI) DisplayFileRewritten(ctx context.Context, displayPath m.Path, result m.FileResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s %s: %d %s replaced\n",
		s.okStyle.Render(modifiedMark), displayPath, result.Replacements, pluralize(result.Replacements, "import", "imports"))
}

// DisplayDiff prints a unified diff between the original and rewritten content.
func (s *SimpleUI) DisplayDiff(ctx context.Context, displayPath m.Path, before, after string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + string(displayPath),
		ToFile:   "b/" + string(displayPath),
		Context:  diffContext,
	})
	if err != nil {
		return fmt.Errorf("diff %s: %w", displayPath, err)
	}

	if diff == "" {
		return nil
	}

	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		s.printf("%s\n", s.diffLineStyle(line).Render(line))
	}

	return nil
}

func (s *SimpleUI) diffLineStyle(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
		return s.dimStyle
	case strings.HasPrefix(line, "+"):
		return s.okStyle
	case strings.HasPrefix(line, "-"):
		return s.errStyle
	}

	return s.dimStyle
}

// DisplayFileError prints a per-file failure as it happens.
func (s *SimpleUI) DisplayFileError(ctx context.Context, fileErr m.FileError) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s Error %s %s: %s\n", s.errStyle.Render(errorMark), opVerb(fileErr.Op), fileErr.Path, fileErr.Err)
}

// DisplaySummary prints the aggregate counts and the first few errors.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary) {
	if err := ctx.Err(); err != nil {
		return
	}

	rule := strings.Repeat("=", bannerWidth)

	s.printf("\n%s\nSUMMARY\n%s\n", rule, rule)
	s.printf("%s", renderSummaryTable(summary))

	if len(summary.Errors) > 0 {
		s.printf("\nErrors encountered:  %d\n", len(summary.Errors))

		for i, fileErr := range summary.Errors {
			if i == maxListedErrors {
				s.printf("  ... and %d more\n", len(summary.Errors)-maxListedErrors)
				break
			}

			s.printf("  - %s\n", fileErr)
		}
	}

	s.printf("%s\nDone!\n", rule)
}

func renderSummaryTable(summary m.Summary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.Append([]string{"Files processed", humanize.Comma(int64(summary.FilesProcessed))})
	table.Append([]string{"Files modified", humanize.Comma(int64(summary.FilesModified))})
	table.Append([]string{"Total replacements", humanize.Comma(int64(summary.TotalReplacements))})
	table.Append([]string{"Bytes written", humanize.Bytes(summary.BytesWritten)})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func describeMode(mode m.Mode) string {
	if mode == m.ModeDeep {
		return "deep package"
	}

	return "package"
}

func opVerb(op string) string {
	switch op {
	case "read":
		return "reading"
	case "write":
		return "writing"
	default:
		return op
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}

	return plural
}
