package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurtool/aurctl/pkg/git"
	"github.com/aurtool/aurctl/pkg/packages"
)

type fakeSCM struct {
	checkouts map[string]bool
	cloneErr  error
	pullErr   error

	cloned []string
	pulled []string
}

func (f *fakeSCM) Clone(_ context.Context, url, dir string) error {
	if f.cloneErr != nil {
		return f.cloneErr
	}
	f.cloned = append(f.cloned, url)
	return os.MkdirAll(dir, 0o755)
}

func (f *fakeSCM) IsCheckout(dir string) bool {
	return f.checkouts[dir]
}

func (f *fakeSCM) Pull(_ context.Context, dir string, _ git.Identity) error {
	if f.pullErr != nil {
		return f.pullErr
	}
	f.pulled = append(f.pulled, dir)
	return nil
}

// fakeRunner writes one artifact file per configured name into the build
// directory; names in failing report a build failure instead.
type fakeRunner struct {
	failing map[string]bool
	split   int // artifacts per build, default 1
}

func (f *fakeRunner) produce(dir, suffix string) ([]string, error) {
	base := filepath.Base(dir)
	if f.failing[base] {
		return nil, errors.New("synthetic build failure")
	}
	n := f.split
	if n == 0 {
		n = 1
	}
	var paths []string
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, suffix))
		if err := os.WriteFile(p, []byte("artifact"), 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (f *fakeRunner) Build(_ context.Context, dir string, _ git.Identity) ([]string, error) {
	return f.produce(dir, "-1-x86_64.pkg.tar.zst")
}

func (f *fakeRunner) SourceOnly(_ context.Context, dir string, _ git.Identity) ([]string, error) {
	return f.produce(dir, ".src.tar.gz")
}

type fakeConfirmer struct {
	answer  bool
	prompts []string
}

func (f *fakeConfirmer) Confirm(msg string) bool {
	f.prompts = append(f.prompts, msg)
	return f.answer
}

func testOptions(t *testing.T) (*Options, *fakeSCM, *fakeRunner, *fakeConfirmer) {
	t.Helper()
	root := t.TempDir()
	scm := &fakeSCM{checkouts: map[string]bool{}}
	runner := &fakeRunner{failing: map[string]bool{}}
	confirm := &fakeConfirmer{answer: true}

	o := &Options{
		CacheDir:    filepath.Join(root, "cache"),
		SourceStore: filepath.Join(root, "sources"),
		VCSStore:    filepath.Join(root, "vcs"),
		ScratchDir:  filepath.Join(root, "scratch"),
		CloneURL:    func(base string) string { return "https://example.com/" + base + ".git" },
		SCM:         scm,
		Runner:      runner,
		Prompt:      confirm,
	}
	return o, scm, runner, confirm
}

func buildable(name string) *packages.Buildable {
	return &packages.Buildable{Name: name, Base: name}
}

func TestBuildDirStableForVCSPackages(t *testing.T) {
	o, _, _, _ := testOptions(t)

	first := o.buildDir(buildable("neovim-git"))
	second := o.buildDir(buildable("neovim-git"))

	assert.Equal(t, first, second)
	assert.Equal(t, filepath.Join(o.VCSStore, "neovim-git"), first)
}

func TestBuildDirEphemeralForFixedPackages(t *testing.T) {
	o, _, _, _ := testOptions(t)

	now := time.Unix(1700000000, 0)
	o.nowFn = func() time.Time { return now }
	first := o.buildDir(buildable("spotify"))

	o.nowFn = func() time.Time { return now.Add(time.Second) }
	second := o.buildDir(buildable("spotify"))

	assert.NotEqual(t, first, second, "two invocations at different times must not collide")
	assert.Contains(t, first, o.ScratchDir)
}

func TestAllSuccess(t *testing.T) {
	o, scm, _, _ := testOptions(t)

	results, err := All(context.Background(), o, []*packages.Buildable{buildable("foo"), buildable("bar")})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"https://example.com/foo.git", "https://example.com/bar.git"}, scm.cloned)

	for _, res := range results {
		assert.False(t, res.AllSourced)
		require.Len(t, res.Artifacts, 1)
		assert.Contains(t, res.Artifacts[0], o.CacheDir)
		_, statErr := os.Stat(res.Artifacts[0])
		assert.NoError(t, statErr, "artifact must exist in the cache")
	}
}

func TestAllPartialFailureContinues(t *testing.T) {
	o, _, runner, confirm := testOptions(t)
	confirm.answer = true

	// the middle build fails; the fake runner keys failures off the build
	// directory basename, which starts with the package base
	runner.failing = map[string]bool{}
	builds := []*packages.Buildable{buildable("one"), buildable("two"), buildable("three")}

	// fail anything whose dir basename starts with "two"
	failingRunner := &prefixFailRunner{inner: runner, prefix: "two"}
	o.Runner = failingRunner

	results, err := All(context.Background(), o, builds)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "one", results[0].Name)
	assert.Equal(t, "three", results[1].Name)
	assert.NotEmpty(t, confirm.prompts, "the user decides whether a partial batch proceeds")
}

type prefixFailRunner struct {
	inner  *fakeRunner
	prefix string
}

func (p *prefixFailRunner) Build(ctx context.Context, dir string, ident git.Identity) ([]string, error) {
	if filepath.Base(dir)[:len(p.prefix)] == p.prefix {
		return nil, errors.New("synthetic build failure")
	}
	return p.inner.Build(ctx, dir, ident)
}

func (p *prefixFailRunner) SourceOnly(ctx context.Context, dir string, ident git.Identity) ([]string, error) {
	return p.inner.SourceOnly(ctx, dir, ident)
}

func TestAllEveryBuildFailedIsFatal(t *testing.T) {
	o, _, _, confirm := testOptions(t)
	confirm.answer = true // even an agreeable user cannot install nothing

	o.Runner = &prefixFailRunner{inner: &fakeRunner{}, prefix: ""}

	_, err := All(context.Background(), o, []*packages.Buildable{buildable("a"), buildable("b")})
	assert.Error(t, err)
}

func TestAllDeclinedContinuationAborts(t *testing.T) {
	o, _, _, confirm := testOptions(t)
	confirm.answer = false

	o.Runner = &prefixFailRunner{inner: &fakeRunner{}, prefix: "bad"}

	_, err := All(context.Background(), o, []*packages.Buildable{buildable("good"), buildable("bad")})
	assert.Error(t, err)
}

func TestSourceOnlyGoesToSourceStore(t *testing.T) {
	o, _, _, _ := testOptions(t)
	o.SourceOnly = true

	results, err := All(context.Background(), o, []*packages.Buildable{buildable("foo")})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].AllSourced)
	require.Len(t, results[0].Artifacts, 1)
	assert.Contains(t, results[0].Artifacts[0], o.SourceStore)
}

func TestSplitPackageFanOut(t *testing.T) {
	o, _, runner, _ := testOptions(t)
	runner.split = 3

	results, err := All(context.Background(), o, []*packages.Buildable{buildable("linux-ck")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Artifacts, 3)
}

func TestAcquireSourceReusesCheckout(t *testing.T) {
	o, scm, _, _ := testOptions(t)

	b := buildable("neovim-git")
	dir := o.buildDir(b)
	scm.checkouts[dir] = true

	results, err := All(context.Background(), o, []*packages.Buildable{b})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Empty(t, scm.cloned, "existing checkout must not be cloned over")
	assert.Equal(t, []string{dir}, scm.pulled, "live packages pull instead")
}

func TestAcquireSourceSkipsPullForFixedPackages(t *testing.T) {
	o, scm, _, _ := testOptions(t)

	b := buildable("spotify")
	o.nowFn = func() time.Time { return time.Unix(1700000000, 0) }
	dir := o.buildDir(b)
	scm.checkouts[dir] = true

	_, err := All(context.Background(), o, []*packages.Buildable{b})
	require.NoError(t, err)

	assert.Empty(t, scm.cloned)
	assert.Empty(t, scm.pulled)
}

func TestCloneFailureIsReportedNotFatalPerUnit(t *testing.T) {
	o, scm, _, confirm := testOptions(t)
	scm.cloneErr = errors.New("remote hung up")
	confirm.answer = true

	_, err := All(context.Background(), o, []*packages.Buildable{buildable("foo")})
	// sole unit failed, so the batch is a hard failure
	assert.Error(t, err)
}

func TestCleanRemovesScratchDir(t *testing.T) {
	o, _, _, _ := testOptions(t)
	o.Clean = true
	o.nowFn = func() time.Time { return time.Unix(1700000000, 0) }

	b := buildable("foo")
	dir := o.buildDir(b)

	results, err := All(context.Background(), o, []*packages.Buildable{b})
	require.NoError(t, err)
	require.Len(t, results, 1)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "scratch build dir should be removed")

	// the artifact survives in the cache
	_, statErr = os.Stat(results[0].Artifacts[0])
	assert.NoError(t, statErr)
}

func TestEnsureDirIsUmaskProof(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	require.NoError(t, ensureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// idempotent, and normalizes a stricter pre-existing mode
	require.NoError(t, os.Chmod(dir, 0o700))
	require.NoError(t, ensureDir(dir))
	info, err = os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyIntoFallsBackToPlainCopy(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.pkg.tar.zst")
	require.NoError(t, os.WriteFile(src, []byte("contents"), 0o644))

	destDir := t.TempDir()
	got, err := copyInto(src, destDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(destDir, "a.pkg.tar.zst"), got)
	b, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(b))
}
