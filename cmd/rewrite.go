package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"relimport.dev/pkg/relimport/internal/controller"
	"relimport.dev/pkg/relimport/internal/domain"
	m "relimport.dev/pkg/relimport/internal/model"
)

const rewriteLongDescription = `Rewrite every import of the configured packages found under the source
directory (default: <project>/src) into a path-relative import.

Modes:
  deep     from "<pkg>", from "<pkg>/sub/path" and import("<pkg>/...")
  package  only package-level from "<pkg>" imports

Files are rewritten in place and only when their content changes. Files that
cannot be read or written are reported and skipped.`

var (
	scopeFlag       string
	packagesFlag    []string
	packagesDirFlag string
	modeFlag        string
	projectFlag     string
	includeFlag     []string
	excludeDirsFlag []string
	diffFlag        bool
	reportFlag      string
)

// rewriteOptions is the fully resolved configuration of one rewrite run.
type rewriteOptions struct {
	projectDir  m.Path
	sourceDir   m.Path
	packagesDir m.Path
	scope       string
	packages    []string
	mode        m.Mode
	include     []string
	excludeDirs []string
	showDiff    bool
	report      m.Path
}

func newRewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite [source-dir]",
		Short: "Rewrite package imports into relative imports",
		Long:  rewriteLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadRewriteOptions(args)
			if err != nil {
				return err
			}

			return runRewrite(cmd, opts)
		},
	}

	configureRewriteFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(newRewriteCmd())
}

func configureRewriteFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&projectFlag, projectFlagName, "C", viper.GetString(projectConfigKey), "project directory; relative paths are resolved against it")
	bindFlagToConfig(flags.Lookup(projectFlagName), projectConfigKey)

	flags.StringVar(&scopeFlag, scopeFlagName, viper.GetString(scopeConfigKey), "scope prefixed to package names in imports (empty for bare names)")
	bindFlagToConfig(flags.Lookup(scopeFlagName), scopeConfigKey)

	flags.StringSliceVarP(&packagesFlag, packagesFlagName, "p", viper.GetStringSlice(packagesConfigKey), "package names to rewrite (can be repeated or comma separated)")
	bindFlagToConfig(flags.Lookup(packagesFlagName), packagesConfigKey)

	flags.StringVar(&packagesDirFlag, packagesDirFlagName, viper.GetString(packagesDirConfigKey), "directory holding the package directories (default: source directory)")
	bindFlagToConfig(flags.Lookup(packagesDirFlagName), packagesDirConfigKey)

	flags.StringVarP(&modeFlag, modeFlagName, "m", viper.GetString(modeConfigKey), "rewrite mode: deep or package")
	bindFlagToConfig(flags.Lookup(modeFlagName), modeConfigKey)

	flags.StringSliceVar(&includeFlag, includeFlagName, viper.GetStringSlice(includeConfigKey), "file name globs to rewrite")
	bindFlagToConfig(flags.Lookup(includeFlagName), includeConfigKey)

	flags.StringSliceVarP(&excludeDirsFlag, excludeDirFlagName, "x", viper.GetStringSlice(excludeDirsConfigKey), "directory names never descended into")
	bindFlagToConfig(flags.Lookup(excludeDirFlagName), excludeDirsConfigKey)

	flags.BoolVar(&diffFlag, diffFlagName, viper.GetBool(diffConfigKey), "print a unified diff for every rewritten file")
	bindFlagToConfig(flags.Lookup(diffFlagName), diffConfigKey)

	flags.StringVar(&reportFlag, reportFlagName, viper.GetString(reportConfigKey), "write a YAML run report to this path")
	bindFlagToConfig(flags.Lookup(reportFlagName), reportConfigKey)
}

// loadRewriteOptions resolves flags, environment and config into absolute
// paths. An explicit source-dir argument is taken relative to the working
// directory; configured paths are taken relative to the project directory.
func loadRewriteOptions(args []string) (rewriteOptions, error) {
	mode, err := m.ParseMode(viper.GetString(modeConfigKey))
	if err != nil {
		return rewriteOptions{}, err
	}

	projectDir, err := fsAdapter.AbsPath(m.Path(viper.GetString(projectConfigKey)))
	if err != nil {
		return rewriteOptions{}, fmt.Errorf("resolve project directory: %w", err)
	}

	sourceDir := resolveAgainst(projectDir, viper.GetString(sourceConfigKey))
	if len(args) > 0 {
		sourceDir, err = fsAdapter.AbsPath(m.Path(args[0]))
		if err != nil {
			return rewriteOptions{}, fmt.Errorf("resolve source directory: %w", err)
		}
	}

	packagesDir := sourceDir
	if dir := viper.GetString(packagesDirConfigKey); dir != "" {
		packagesDir = resolveAgainst(projectDir, dir)
	}

	return rewriteOptions{
		projectDir:  projectDir,
		sourceDir:   sourceDir,
		packagesDir: packagesDir,
		scope:       viper.GetString(scopeConfigKey),
		packages:    viper.GetStringSlice(packagesConfigKey),
		mode:        mode,
		include:     splitList(viper.GetStringSlice(includeConfigKey)),
		excludeDirs: splitList(viper.GetStringSlice(excludeDirsConfigKey)),
		showDiff:    viper.GetBool(diffConfigKey),
		report:      m.Path(viper.GetString(reportConfigKey)),
	}, nil
}

// splitList expands comma separated entries. Environment values reach viper
// as a single string that is only split on whitespace. A nil list stays nil
// so the workflow can apply its defaults.
func splitList(values []string) []string {
	if values == nil {
		return nil
	}

	out := make([]string, 0, len(values))

	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}

	return out
}

func resolveAgainst(base m.Path, path string) m.Path {
	if filepath.IsAbs(path) {
		return m.Path(filepath.Clean(path))
	}

	return fsAdapter.JoinPath(string(base), path)
}

func runRewrite(cmd *cobra.Command, opts rewriteOptions) error {
	packages, err := domain.ResolvePackages(fsAdapter, opts.packagesDir, opts.packages)
	if err != nil {
		return err
	}

	rewriter, err := domain.NewRewriter(fsAdapter, domain.RewriterOptions{
		Scope:    opts.scope,
		Mode:     opts.mode,
		Packages: packages,
	})
	if err != nil {
		return fmt.Errorf("build rewriter: %w", err)
	}

	workflow := domain.NewWorkflow(fsAdapter, reportStore, controller.NewSimpleUI(cmd), rewriter)

	_, err = workflow.Run(cmd.Context(), domain.RunArgs{
		ProjectDir:  opts.projectDir,
		SourceDir:   opts.sourceDir,
		Include:     opts.include,
		ExcludeDirs: opts.excludeDirs,
		ShowDiff:    opts.showDiff,
		Report:      opts.report,
	})

	return err
}
