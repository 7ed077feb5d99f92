package domain

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"relimport.dev/pkg/relimport/internal/adapter"
	adaptermocks "relimport.dev/pkg/relimport/internal/adapter/mocks"
	"relimport.dev/pkg/relimport/internal/controller"
	m "relimport.dev/pkg/relimport/internal/model"
)

type diffCall struct {
	path          m.Path
	before, after string
}

// recordingUI captures everything the workflow reports.
type recordingUI struct {
	started   []controller.StartInfo
	warnings  []string
	rewritten map[m.Path]int
	diffs     []diffCall
	errors    []m.FileError
	summaries []m.Summary
}

func newRecordingUI() *recordingUI {
	return &recordingUI{rewritten: map[m.Path]int{}}
}

func (u *recordingUI) DisplayStart(_ context.Context, info controller.StartInfo) {
	u.started = append(u.started, info)
}

func (u *recordingUI) DisplayWarning(_ context.Context, message string) {
	u.warnings = append(u.warnings, message)
}

func (u *recordingUI) DisplayFileRewritten(_ context.Context, displayPath m.Path, result m.FileResult) {
	u.rewritten[displayPath] = result.Replacements
}

func (u *recordingUI) DisplayDiff(_ context.Context, displayPath m.Path, before, after string) error {
	u.diffs = append(u.diffs, diffCall{path: displayPath, before: before, after: after})
	return nil
}

func (u *recordingUI) DisplayFileError(_ context.Context, fileErr m.FileError) {
	u.errors = append(u.errors, fileErr)
}

func (u *recordingUI) DisplaySummary(_ context.Context, summary m.Summary) {
	u.summaries = append(u.summaries, summary)
}

type fixture struct {
	project string
	src     string
}

func (f fixture) path(rel string) string {
	return filepath.Join(f.project, filepath.FromSlash(rel))
}

func newFixture(t *testing.T, files map[string]string) fixture {
	t.Helper()

	project := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(project, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	return fixture{project: project, src: filepath.Join(project, "src")}
}

func newLocalWorkflow(t *testing.T, f fixture, ui controller.UI, names ...string) Workflow {
	t.Helper()

	fsAdapter := adapter.NewLocalSourceFSAdapter()

	packages, err := ResolvePackages(fsAdapter, m.Path(f.src), names)
	require.NoError(t, err)

	r, err := NewRewriter(fsAdapter, RewriterOptions{Scope: "@ankaa", Mode: m.ModeDeep, Packages: packages})
	require.NoError(t, err)

	return NewWorkflow(fsAdapter, adapter.NewReportStore(), ui, r)
}

func readFixture(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestWorkflow_Run(t *testing.T) {
	const vendored = `import { x } from "@ankaa/types/user"` + "\n"

	f := newFixture(t, map[string]string{
		"src/components/widgets/Button.ts": `import { User } from "@ankaa/types/user"` + "\n",
		"src/app.tsx":                      "import { useUser } from '@ankaa/hooks'\nconst t = import(\"@ankaa/types\")\n",
		"src/types/user.ts":                "export interface User { id: string }\n",
		"src/hooks/index.ts":               "import { User } from \"@ankaa/types/user\"\n",
		"src/plain.ts":                     "export const answer = 42\n",
		"src/README.md":                    "from \"@ankaa/types\"\n",
		"src/node_modules/lib/index.ts":    vendored,
		"src/.git/hooks/pre-commit.ts":     vendored,
	})

	ui := newRecordingUI()
	wf := newLocalWorkflow(t, f, ui, "types", "hooks")

	summary, err := wf.Run(context.Background(), RunArgs{
		ProjectDir: m.Path(f.project),
		SourceDir:  m.Path(f.src),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.FilesProcessed)
	assert.Equal(t, 3, summary.FilesModified)
	assert.Equal(t, 4, summary.TotalReplacements)
	assert.Empty(t, summary.Errors)

	assert.Equal(t, `import { User } from "../../types/user"`+"\n", readFixture(t, f.path("src/components/widgets/Button.ts")))
	assert.Equal(t, "import { useUser } from './hooks'\nconst t = import(\"./types\")\n", readFixture(t, f.path("src/app.tsx")))
	assert.Equal(t, "import { User } from \"../types/user\"\n", readFixture(t, f.path("src/hooks/index.ts")))
	assert.Equal(t, "export const answer = 42\n", readFixture(t, f.path("src/plain.ts")))
	assert.Equal(t, "from \"@ankaa/types\"\n", readFixture(t, f.path("src/README.md")))
	assert.Equal(t, vendored, readFixture(t, f.path("src/node_modules/lib/index.ts")))
	assert.Equal(t, vendored, readFixture(t, f.path("src/.git/hooks/pre-commit.ts")))

	assert.Equal(t, map[m.Path]int{
		m.Path(filepath.Join("src", "app.tsx")):                            2,
		m.Path(filepath.Join("src", "components", "widgets", "Button.ts")): 1,
		m.Path(filepath.Join("src", "hooks", "index.ts")):                  1,
	}, ui.rewritten)

	require.Len(t, ui.started, 1)
	assert.Equal(t, m.ModeDeep, ui.started[0].Mode)
	assert.Equal(t, "@ankaa", ui.started[0].Scope)
	assert.Empty(t, ui.warnings)
	assert.Empty(t, ui.diffs)
	require.Len(t, ui.summaries, 1)
	assert.Equal(t, summary, ui.summaries[0])
}

func TestWorkflow_Run_SecondPassChangesNothing(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/pages/home/Home.tsx": "import { User } from \"@ankaa/types/user\"\n",
		"src/types/user.ts":       "export type User = {}\n",
	})

	wf := newLocalWorkflow(t, f, newRecordingUI(), "types")
	args := RunArgs{ProjectDir: m.Path(f.project), SourceDir: m.Path(f.src)}

	first, err := wf.Run(context.Background(), args)
	require.NoError(t, err)
	require.Equal(t, 1, first.TotalReplacements)

	rewritten := readFixture(t, f.path("src/pages/home/Home.tsx"))

	second, err := wf.Run(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, 2, second.FilesProcessed)
	assert.Zero(t, second.FilesModified)
	assert.Zero(t, second.TotalReplacements)
	assert.Equal(t, rewritten, readFixture(t, f.path("src/pages/home/Home.tsx")))
}

func TestWorkflow_Run_CustomIncludeAndExclude(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/a.ts":           "import a from \"@ankaa/types\"\n",
		"src/b.js":           "import b from \"@ankaa/types\"\n",
		"src/dist/c.js":      "import c from \"@ankaa/types\"\n",
		"src/types/index.ts": "export {}\n",
	})

	wf := newLocalWorkflow(t, f, newRecordingUI(), "types")

	summary, err := wf.Run(context.Background(), RunArgs{
		SourceDir:   m.Path(f.src),
		Include:     []string{"*.js"},
		ExcludeDirs: []string{"dist"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Equal(t, 1, summary.FilesModified)
	assert.Equal(t, "import a from \"@ankaa/types\"\n", readFixture(t, f.path("src/a.ts")))
	assert.Equal(t, "import b from \"./types\"\n", readFixture(t, f.path("src/b.js")))
	assert.Equal(t, "import c from \"@ankaa/types\"\n", readFixture(t, f.path("src/dist/c.js")))
}

func TestWorkflow_Run_ShowDiffAndReport(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app.ts":         "import a from \"@ankaa/types\"\n",
		"src/types/index.ts": "export {}\n",
	})

	ui := newRecordingUI()
	wf := newLocalWorkflow(t, f, ui, "types")
	reportPath := filepath.Join(f.project, "out", "relimport-report.yaml")

	_, err := wf.Run(context.Background(), RunArgs{
		ProjectDir: m.Path(f.project),
		SourceDir:  m.Path(f.src),
		ShowDiff:   true,
		Report:     m.Path(reportPath),
	})
	require.NoError(t, err)

	require.Len(t, ui.diffs, 1)
	assert.Equal(t, m.Path(filepath.Join("src", "app.ts")), ui.diffs[0].path)
	assert.Equal(t, "import a from \"@ankaa/types\"\n", ui.diffs[0].before)
	assert.Equal(t, "import a from \"./types\"\n", ui.diffs[0].after)

	report, err := adapter.NewReportStore().LoadReport(m.Path(reportPath))
	require.NoError(t, err)
	assert.Equal(t, []string{"types"}, report.Packages)
	assert.Equal(t, "@ankaa", report.Scope)
	assert.Equal(t, 1, report.Summary.TotalReplacements)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestWorkflow_Run_MissingSourceDir(t *testing.T) {
	f := newFixture(t, nil)
	ui := newRecordingUI()
	wf := newLocalWorkflow(t, f, ui, "types")

	_, err := wf.Run(context.Background(), RunArgs{SourceDir: m.Path(f.src)})

	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.Empty(t, ui.started)
	assert.Empty(t, ui.summaries)
}

func TestWorkflow_Run_MissingPackageDirWarns(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/types/index.ts": "export {}\n",
	})
	ui := newRecordingUI()
	wf := newLocalWorkflow(t, f, ui, "types", "schemas")

	_, err := wf.Run(context.Background(), RunArgs{SourceDir: m.Path(f.src)})
	require.NoError(t, err)

	require.Len(t, ui.warnings, 1)
	assert.Contains(t, ui.warnings[0], filepath.Join("src", "schemas"))
}

func TestWorkflow_Run_CancelledContext(t *testing.T) {
	f := newFixture(t, map[string]string{
		"src/app.ts": "import a from \"@ankaa/types\"\n",
	})
	wf := newLocalWorkflow(t, f, newRecordingUI(), "types")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := wf.Run(ctx, RunArgs{SourceDir: m.Path(f.src)})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "import a from \"@ankaa/types\"\n", readFixture(t, f.path("src/app.ts")))
}

func TestWorkflow_Run_PerFileErrorsDoNotAbort(t *testing.T) {
	dirInfo, fileInfo := statFixtures(t)

	const (
		srcDir  = m.Path("/work/web/src")
		broken  = "/work/web/src/broken.ts"
		locked  = "/work/web/src/locked.ts"
		healthy = "/work/web/src/healthy.ts"
	)

	fsMock := adaptermocks.NewMockSourceFSAdapter(t)
	fsMock.EXPECT().FileInfo(srcDir).Return(dirInfo, nil)
	fsMock.EXPECT().FileInfo(typesPkg.Dir).Return(dirInfo, nil)
	fsMock.EXPECT().Walk(srcDir, DefaultExcludeDirs, mock.Anything).RunAndReturn(
		func(root m.Path, _ []string, fn adapter.FilepathWalkFunc) error {
			for _, p := range []string{broken, locked, healthy} {
				if err := fn(p, fileInfo, nil); err != nil {
					return err
				}
			}

			return nil
		})

	fsMock.EXPECT().FileInfo(m.Path(broken)).Return(fileInfo, nil)
	fsMock.EXPECT().ReadFile(m.Path(broken)).Return(nil, fs.ErrPermission)

	fsMock.EXPECT().FileInfo(m.Path(locked)).Return(fileInfo, nil)
	fsMock.EXPECT().ReadFile(m.Path(locked)).Return([]byte(`import a from "@pkg/types"`), nil)
	fsMock.EXPECT().WriteFile(m.Path(locked), mock.Anything, mock.Anything).Return(errors.New("read-only file system"))

	fsMock.EXPECT().FileInfo(m.Path(healthy)).Return(fileInfo, nil)
	fsMock.EXPECT().ReadFile(m.Path(healthy)).Return([]byte(`import a from "@pkg/types"`), nil)
	fsMock.EXPECT().WriteFile(m.Path(healthy), []byte(`import a from "./types"`), fileInfo.Mode().Perm()).Return(nil)
	fsMock.EXPECT().RelPath(m.Path("/work/web"), m.Path(healthy)).Return(m.Path("src/healthy.ts"), nil)

	r, err := NewRewriter(fsMock, RewriterOptions{Scope: testScope, Packages: []m.Package{typesPkg}})
	require.NoError(t, err)

	ui := newRecordingUI()
	wf := NewWorkflow(fsMock, adapter.NewReportStore(), ui, r)

	summary, err := wf.Run(context.Background(), RunArgs{SourceDir: srcDir})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.FilesProcessed)
	assert.Equal(t, 1, summary.FilesModified)
	assert.Equal(t, 1, summary.TotalReplacements)
	assert.Equal(t, []m.FileError{
		{Path: broken, Op: OpRead, Err: fs.ErrPermission.Error()},
		{Path: locked, Op: OpWrite, Err: "read-only file system"},
	}, summary.Errors)
	assert.Equal(t, summary.Errors, ui.errors)
	assert.Equal(t, map[m.Path]int{"src/healthy.ts": 1}, ui.rewritten)
}

func TestWorkflow_Run_WalkErrorsAreRecorded(t *testing.T) {
	dirInfo, fileInfo := statFixtures(t)

	const srcDir = m.Path("/work/web/src")

	fsMock := adaptermocks.NewMockSourceFSAdapter(t)
	fsMock.EXPECT().FileInfo(srcDir).Return(dirInfo, nil)
	fsMock.EXPECT().FileInfo(typesPkg.Dir).Return(dirInfo, nil)
	fsMock.EXPECT().Walk(srcDir, DefaultExcludeDirs, mock.Anything).RunAndReturn(
		func(_ m.Path, _ []string, fn adapter.FilepathWalkFunc) error {
			return fn("/work/web/src/vanished.ts", fileInfo, fs.ErrNotExist)
		})

	r, err := NewRewriter(fsMock, RewriterOptions{Scope: testScope, Packages: []m.Package{typesPkg}})
	require.NoError(t, err)

	wf := NewWorkflow(fsMock, adapter.NewReportStore(), newRecordingUI(), r)

	summary, err := wf.Run(context.Background(), RunArgs{SourceDir: srcDir})
	require.NoError(t, err)

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, OpWalk, summary.Errors[0].Op)
	assert.Zero(t, summary.FilesProcessed)
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, matchesAny("Button.tsx", DefaultInclude))
	assert.True(t, matchesAny("index.ts", DefaultInclude))
	assert.False(t, matchesAny("index.js", DefaultInclude))
	assert.False(t, matchesAny("index.ts.map", DefaultInclude))
	assert.False(t, matchesAny("index.ts", []string{"[bad"}))
}

func statFixtures(t *testing.T) (os.FileInfo, os.FileInfo) {
	t.Helper()

	dir := t.TempDir()
	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)

	return dirInfo, statTempFile(t)
}
