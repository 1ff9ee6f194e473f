package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/rnscaffold/cli/internal/errors"
	"github.com/rnscaffold/cli/internal/fetch"
	"github.com/rnscaffold/cli/internal/install"
	"github.com/rnscaffold/cli/internal/rewrite"
)

var template = map[string]string{
	"package.json":                          `{"name": "ReactNativeBoilerplate", "dependencies": {"@my-rn-boilerplate/store": "*"}}`,
	"App.tsx":                               "import {store} from '@my-rn-boilerplate/store';\n",
	".git/HEAD":                             "ref: refs/heads/main\n",
	"ios/ReactNativeBoilerplate/Info.plist": "<string>ReactNativeBoilerplate</string>",
	"ios/ReactNativeBoilerplate.xcodeproj/xcshareddata/xcschemes/ReactNativeBoilerplate.xcscheme": "ReactNativeBoilerplate.app",
	"android/app/src/main/java/org/reactjs/native/example/ReactNativeBoilerplate/MainActivity.kt": "package com.reactnativeboilerplate\n",
}

// events records collaborator calls in order.
type events []string

type fakeFetcher struct {
	log   *events
	files map[string]string
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, source, dest string) error {
	*f.log = append(*f.log, "fetch "+source)
	if f.err != nil {
		return oerrors.NewFetchError(source, dest, f.err)
	}
	for rel, content := range f.files {
		p := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type fakeInstaller struct {
	log  *events
	name string
	skip string
	err  error
}

func (f *fakeInstaller) Name() string               { return f.name }
func (f *fakeInstaller) SkipReason(_ string) string { return f.skip }
func (f *fakeInstaller) Install(_ context.Context, _ string) error {
	*f.log = append(*f.log, f.name)
	return f.err
}

type fakeVCS struct {
	log *events
	err error
}

func (f *fakeVCS) Reinit(_ context.Context, dir string) (string, error) {
	*f.log = append(*f.log, "git init")
	if f.err != nil {
		return "", f.err
	}
	return "0123456789abcdef0123456789abcdef01234567", os.RemoveAll(filepath.Join(dir, ".git"))
}

func (f *fakeVCS) RemoveHistory(dir string) error {
	*f.log = append(*f.log, "remove history")
	return os.RemoveAll(filepath.Join(dir, ".git"))
}

type harness struct {
	log      events
	fetcher  *fakeFetcher
	npm      *fakeInstaller
	pods     *fakeInstaller
	vcs      *fakeVCS
	scaffold *Scaffolder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{}
	h.fetcher = &fakeFetcher{log: &h.log, files: template}
	h.npm = &fakeInstaller{log: &h.log, name: "npm install"}
	h.pods = &fakeInstaller{log: &h.log, name: "pod install"}
	h.vcs = &fakeVCS{log: &h.log}

	s, err := New(Deps{
		NewFetcher: func(string) fetch.Fetcher { return h.fetcher },
		Installers: []install.Installer{h.npm, h.pods},
		VCS:        h.vcs,
	})
	require.NoError(t, err)
	h.scaffold = s
	return h
}

func read(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestRun(t *testing.T) {
	h := newHarness(t)
	parent := t.TempDir()

	res, err := h.scaffold.Run(context.Background(), Options{Name: "MyApp", Dir: parent})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(parent, "MyApp"), res.ProjectDir)
	assert.Equal(t, "com.myapp", res.IDs.NewBundleID)
	assert.Equal(t, "@myapp", res.IDs.NewScope)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", res.Commit)

	assert.Equal(t, events{
		"fetch https://github.com/tedckh/react-native-boilerplate.git",
		"npm install",
		"pod install",
		"git init",
	}, h.log)

	assert.Contains(t, read(t, res.ProjectDir, "package.json"), `"name": "MyApp"`)
	assert.Contains(t, read(t, res.ProjectDir, "App.tsx"), "@myapp/store")
	assert.Equal(t, "<string>MyApp</string>", read(t, res.ProjectDir, "ios/MyApp/Info.plist"))
	assert.Equal(t, "MyApp.app", read(t, res.ProjectDir, "ios/MyApp.xcodeproj/xcshareddata/xcschemes/MyApp.xcscheme"))
	assert.Equal(t, "package com.myapp\n", read(t, res.ProjectDir, "android/app/src/main/java/com/myapp/MainActivity.kt"))
	assert.NoDirExists(t, filepath.Join(res.ProjectDir, "android/app/src/main/java/org"))
}

func TestRun_MissingName(t *testing.T) {
	h := newHarness(t)

	_, err := h.scaffold.Run(context.Background(), Options{Name: "", Dir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrMissingArgument))
	assert.Equal(t, oerrors.ExitGeneralError, oerrors.ExitCodeFromError(err))
	assert.Empty(t, h.log, "no collaborator runs before the name is known")
}

func TestRun_FetchFailureStopsEverything(t *testing.T) {
	h := newHarness(t)
	h.fetcher.err = errors.New("repository not found")

	_, err := h.scaffold.Run(context.Background(), Options{Name: "MyApp", Dir: t.TempDir(), TemplateURL: "https://example.com/x.git"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrFetch))
	assert.Equal(t, events{"fetch https://example.com/x.git"}, h.log)
}

func TestRun_RewriteFailure(t *testing.T) {
	h := newHarness(t)
	files := map[string]string{"ios/MyApp/stray": "x"}
	for k, v := range template {
		files[k] = v
	}
	h.fetcher.files = files

	res, err := h.scaffold.Run(context.Background(), Options{Name: "MyApp", Dir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrRewrite))
	assert.Equal(t, oerrors.ExitRewriteError, oerrors.ExitCodeFromError(err))
	assert.Equal(t, events{"fetch https://github.com/tedckh/react-native-boilerplate.git"}, h.log,
		"collaborators never see a partially rewritten tree")

	var detail *oerrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, res.ProjectDir, detail.Location)
}

func TestRun_TransactionalFailureKeepsTemplate(t *testing.T) {
	h := newHarness(t)
	files := map[string]string{"ios/MyApp/stray": "x"}
	for k, v := range template {
		files[k] = v
	}
	h.fetcher.files = files

	res, err := h.scaffold.Run(context.Background(), Options{Name: "MyApp", Dir: t.TempDir(), Transactional: true})
	require.Error(t, err)

	rerr, ok := rewrite.IsRewriteError(err)
	require.True(t, ok)
	assert.True(t, rerr.RolledBack)
	assert.Contains(t, read(t, res.ProjectDir, "package.json"), "ReactNativeBoilerplate")
}

func TestRun_CollaboratorFailuresAreWarnings(t *testing.T) {
	h := newHarness(t)
	h.npm.err = errors.New("npm exploded")
	h.pods.skip = "CocoaPods only runs on macOS"
	h.vcs.err = errors.New("git exploded")

	res, err := h.scaffold.Run(context.Background(), Options{Name: "MyApp", Dir: t.TempDir()})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	assert.EqualError(t, res.Warnings[0], "npm exploded")
	assert.EqualError(t, res.Warnings[1], "git exploded")
	assert.Equal(t, events{
		"fetch https://github.com/tedckh/react-native-boilerplate.git",
		"npm install",
		"git init",
	}, h.log)
}

func TestRun_SkipInstallAndGit(t *testing.T) {
	h := newHarness(t)

	res, err := h.scaffold.Run(context.Background(), Options{
		Name: "MyApp", Dir: t.TempDir(), SkipInstall: true, SkipGit: true,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Commit)
	assert.Equal(t, events{
		"fetch https://github.com/tedckh/react-native-boilerplate.git",
		"remove history",
	}, h.log)
	assert.NoDirExists(t, filepath.Join(res.ProjectDir, ".git"))
}

func TestRun_DryRun(t *testing.T) {
	h := newHarness(t)
	parent := t.TempDir()

	res, err := h.scaffold.Run(context.Background(), Options{Name: "MyApp", Dir: parent, DryRun: true, BundlePrefix: "io.acme"})
	require.NoError(t, err)
	require.NotNil(t, res.Preview)
	assert.Equal(t, "io.acme.myapp", res.IDs.NewBundleID)
	assert.NotEmpty(t, res.Preview.Changes)
	assert.True(t, res.Report.Changed())

	assert.NoDirExists(t, filepath.Join(parent, "MyApp"))
	assert.Len(t, h.log, 1, "only the fetch runs")
}

func TestRun_InvalidBundlePrefix(t *testing.T) {
	h := newHarness(t)

	_, err := h.scaffold.Run(context.Background(), Options{Name: "MyApp", Dir: t.TempDir(), BundlePrefix: "Com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
	assert.Empty(t, h.log)
}
