package makepkg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/aurtool/aurctl/pkg/git"
)

// Runner invokes the external build tool in a prepared source directory.
// Builds execute third-party scripts, so every invocation runs as the
// configured low-privilege identity rather than the caller.
type Runner struct {
	// Cmd is the build tool binary, "makepkg" unless overridden by tests.
	Cmd string
}

func New() *Runner {
	return &Runner{Cmd: "makepkg"}
}

// Build runs a full package build in dir and returns the artifact files it
// produced. A split package yields several paths from the one invocation.
func (r *Runner) Build(ctx context.Context, dir string, ident git.Identity) ([]string, error) {
	if err := r.runAs(ctx, dir, ident, io.Discard, "-f"); err != nil {
		return nil, fmt.Errorf("build failed in %s: %w", dir, err)
	}

	// the produced artifact paths come from the tool itself, not from
	// guessing at filenames
	var out bytes.Buffer
	if err := r.runAs(ctx, dir, ident, &out, "--packagelist"); err != nil {
		return nil, fmt.Errorf("failed to list built artifacts in %s: %w", dir, err)
	}

	paths := ParsePackageList(out.String())
	if len(paths) == 0 {
		return nil, fmt.Errorf("build in %s produced no artifacts", dir)
	}
	return paths, nil
}

// SourceOnly produces a redistributable source tarball instead of a binary
// artifact.
func (r *Runner) SourceOnly(ctx context.Context, dir string, ident git.Identity) ([]string, error) {
	if err := r.runAs(ctx, dir, ident, io.Discard, "-f", "--allsource"); err != nil {
		return nil, fmt.Errorf("source tarball build failed in %s: %w", dir, err)
	}

	// the tool has no listing flag for source tarballs; they land next to
	// the build script
	paths, err := filepath.Glob(filepath.Join(dir, "*.src.tar*"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("source tarball build in %s produced nothing", dir)
	}
	return paths, nil
}

// ParsePackageList parses the build tool's artifact listing, one absolute
// path per line.
func ParsePackageList(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

func (r *Runner) runAs(ctx context.Context, dir string, ident git.Identity, stdout io.Writer, args ...string) error {
	cmd := exec.CommandContext(ctx, r.Cmd, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = io.Discard
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{Uid: ident.UID, Gid: ident.GID},
	}
	return cmd.Run()
}
