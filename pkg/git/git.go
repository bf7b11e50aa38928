package git

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"github.com/go-git/go-git/v5"
)

// Identity is the system user that source checkouts and builds run as.
// Fetching and executing third-party build scripts must not happen with the
// caller's (typically elevated) privileges.
type Identity struct {
	Username string
	UID      uint32
	GID      uint32
}

// LookupIdentity resolves a username into an Identity.
func LookupIdentity(username string) (Identity, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to look up build user %q: %w", username, err)
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return Identity{}, fmt.Errorf("non-numeric uid %q for user %q: %w", u.Uid, username, err)
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return Identity{}, fmt.Errorf("non-numeric gid %q for user %q: %w", u.Gid, username, err)
	}
	return Identity{Username: username, UID: uint32(uid), GID: uint32(gid)}, nil
}

// Clone makes a shallow, single-branch clone of url into dir.
func Clone(ctx context.Context, url, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %s into %s: %w", url, dir, err)
	}
	return nil
}

// IsCheckout reports whether dir is an existing git checkout.
func IsCheckout(dir string) bool {
	_, err := git.PlainOpen(dir)
	return err == nil
}

// Pull discards any local modifications in dir and fetches the latest
// revision. Both git calls run as the given identity rather than the caller,
// since the checkout contains third-party build scripts. Output is discarded;
// the exit status is the only signal.
func Pull(ctx context.Context, dir string, ident Identity) error {
	if err := runAs(ctx, dir, ident, "reset", "--hard", "HEAD"); err != nil {
		return fmt.Errorf("failed to reset checkout %s: %w", dir, err)
	}
	if err := runAs(ctx, dir, ident, "pull"); err != nil {
		return fmt.Errorf("failed to pull %s: %w", dir, err)
	}
	return nil
}

func runAs(ctx context.Context, dir string, ident Identity, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{Uid: ident.UID, Gid: ident.GID},
	}
	return cmd.Run()
}
