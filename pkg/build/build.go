package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/fatih/color"

	"github.com/aurtool/aurctl/pkg/git"
	"github.com/aurtool/aurctl/pkg/packages"
	"github.com/aurtool/aurctl/pkg/pkgbuild"
)

// SourceControl fetches and refreshes package sources.
type SourceControl interface {
	Clone(ctx context.Context, url, dir string) error
	IsCheckout(dir string) bool
	Pull(ctx context.Context, dir string, ident git.Identity) error
}

// Runner invokes the external build tool.
type Runner interface {
	Build(ctx context.Context, dir string, ident git.Identity) ([]string, error)
	SourceOnly(ctx context.Context, dir string, ident git.Identity) ([]string, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(msg string) bool
}

// Result is the outcome of one successful build.
type Result struct {
	Name string

	// AllSourced means a source tarball was produced instead of installable
	// artifacts.
	AllSourced bool

	// Artifacts are the final paths in the cache (or source store), one per
	// split-package member.
	Artifacts []string
}

// Options carries the configuration and collaborators for a build batch.
// Everything is explicit; there is no ambient state.
type Options struct {
	CacheDir    string
	SourceStore string
	VCSStore    string
	ScratchDir  string

	Builder  git.Identity
	CloneURL func(base string) string

	SCM    SourceControl
	Runner Runner
	Prompt Confirmer

	Hotedit    bool
	Editor     string
	SourceOnly bool
	Clean      bool

	// nowFn is swappable in tests; defaults to time.Now.
	nowFn func() time.Time
}

func (o *Options) now() time.Time {
	if o.nowFn != nil {
		return o.nowFn()
	}
	return time.Now()
}

// All builds every buildable in order, one at a time: builds mutate shared
// stores and may assume exclusive use of their directories, so there is no
// parallelism here. A single failure is reported and the user decides
// whether the remaining builds (and the install of what already succeeded)
// go ahead. A batch where nothing succeeded is a hard failure.
func All(ctx context.Context, o *Options, builds []*packages.Buildable) ([]Result, error) {
	log := clog.FromContext(ctx)

	if err := o.ensureStores(); err != nil {
		return nil, err
	}

	var results []Result
	for _, b := range builds {
		res, fail := o.one(ctx, b)
		if fail == nil {
			results = append(results, res)
			continue
		}

		if !fail.IsSilent() {
			fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("error:"), fail.Message())
		}
		log.Warnf("build of %s failed", b.Name)

		if !o.Prompt.Confirm("Continue, and install what has already been built?") {
			return nil, fmt.Errorf("build of %s failed", b.Name)
		}
	}

	if len(builds) > 0 && len(results) == 0 {
		return nil, errors.New("every build failed; nothing to install")
	}
	return results, nil
}

// one runs the per-unit state machine: select and prepare the build
// directory, acquire sources, optionally hotedit, build, and move the
// artifacts into their store. Every failure resolves into a Failure value;
// nothing panics past this boundary.
func (o *Options) one(ctx context.Context, b *packages.Buildable) (res Result, fail *Failure) {
	defer func() {
		if r := recover(); r != nil {
			fail = FailMsgf("internal error building %s: %v", b.Name, r)
		}
	}()

	dir := o.buildDir(b)

	if err := ensureDir(dir); err != nil {
		return Result{}, FailMsgf("%v", err)
	}
	if err := o.chownToBuilder(dir); err != nil {
		return Result{}, FailMsgf("%v", err)
	}

	if o.Clean && !pkgbuild.IsVCS(b.Name) {
		// scratch directories go away whether the build worked or not
		defer os.RemoveAll(dir)
	}

	if fail := o.acquireSource(ctx, b, dir); fail != nil {
		return Result{}, fail
	}

	if o.Hotedit {
		if fail := o.hotedit(ctx, dir); fail != nil {
			return Result{}, fail
		}
	}

	return o.runBuild(ctx, b, dir)
}

func (o *Options) acquireSource(ctx context.Context, b *packages.Buildable, dir string) *Failure {
	if o.SCM.IsCheckout(dir) {
		// existing checkout: live packages advance to the latest revision,
		// fixed ones reuse what is already there
		if pkgbuild.IsVCS(b.Name) {
			if err := o.SCM.Pull(ctx, dir, o.Builder); err != nil {
				return FailMsgf("failed to update sources for %s: %v", b.Name, err)
			}
		}
		return nil
	}

	if err := o.SCM.Clone(ctx, o.CloneURL(b.Base), dir); err != nil {
		return FailMsgf("failed to fetch sources for %s: %v", b.Name, err)
	}
	// the clone ran in-process; hand the tree to the build identity
	if err := o.chownTreeToBuilder(dir); err != nil {
		return FailMsgf("%v", err)
	}
	return nil
}

// hotedit offers the build script, the install hook if there is one, and
// each patch file for manual editing before the build runs. Declining leaves
// the file untouched; nothing here parses the edited content.
func (o *Options) hotedit(ctx context.Context, dir string) *Failure {
	candidates := []string{filepath.Join(dir, "PKGBUILD")}

	installs, _ := filepath.Glob(filepath.Join(dir, "*.install"))
	candidates = append(candidates, installs...)

	patches, _ := filepath.Glob(filepath.Join(dir, "*.patch"))
	candidates = append(candidates, patches...)

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if !o.Prompt.Confirm(fmt.Sprintf("Edit %s?", filepath.Base(path))) {
			continue
		}
		if err := o.edit(ctx, path); err != nil {
			return FailMsgf("editor failed on %s: %v", path, err)
		}
	}
	return nil
}

func (o *Options) edit(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, o.Editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (o *Options) runBuild(ctx context.Context, b *packages.Buildable, dir string) (Result, *Failure) {
	var (
		produced []string
		dest     string
		err      error
	)
	if o.SourceOnly {
		produced, err = o.Runner.SourceOnly(ctx, dir, o.Builder)
		dest = o.SourceStore
	} else {
		produced, err = o.Runner.Build(ctx, dir, o.Builder)
		dest = o.CacheDir
	}
	if err != nil {
		return Result{}, FailMsgf("failed to build %s: %v", b.Name, err)
	}

	final := make([]string, 0, len(produced))
	for _, artifact := range produced {
		moved, err := copyInto(artifact, dest)
		if err != nil {
			return Result{}, FailMsgf("failed to store artifact for %s: %v", b.Name, err)
		}
		final = append(final, moved)
	}

	return Result{Name: b.Name, AllSourced: o.SourceOnly, Artifacts: final}, nil
}

// GitSourceControl is the production SourceControl, backed by the git
// package.
type GitSourceControl struct{}

func (GitSourceControl) Clone(ctx context.Context, url, dir string) error {
	return git.Clone(ctx, url, dir)
}

func (GitSourceControl) IsCheckout(dir string) bool {
	return git.IsCheckout(dir)
}

func (GitSourceControl) Pull(ctx context.Context, dir string, ident git.Identity) error {
	return git.Pull(ctx, dir, ident)
}
