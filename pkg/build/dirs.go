package build

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aurtool/aurctl/pkg/pkgbuild"
	"github.com/aurtool/aurctl/pkg/packages"
)

const dirMode = 0o755

// buildDir resolves where a buildable gets built. Version-control packages
// get a stable path derived only from the name, so repeated invocations
// reuse the same checkout. Everything else gets a throwaway path salted with
// the current time; collisions are improbable, not impossible.
func (o *Options) buildDir(b *packages.Buildable) string {
	if pkgbuild.IsVCS(b.Name) {
		return filepath.Join(o.VCSStore, b.Base)
	}

	ver := ""
	if b.Version != nil {
		ver = b.Version.String()
	}
	sum := sha256.Sum256([]byte(b.Name + ver + o.now().String()))
	return filepath.Join(o.ScratchDir, fmt.Sprintf("%s-%s", b.Base, hex.EncodeToString(sum[:])[:12]))
}

// ensureDir creates dir with fixed permissions. The explicit chmod makes the
// mode independent of the caller's umask, and doubles as the migration step
// for directories created more restrictively by older versions of the tool.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.Chmod(dir, dirMode); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", dir, err)
	}
	return nil
}

// ensureStores creates the well-known long-lived directories up front.
// Failure here is fatal to the whole batch, not a per-unit failure.
func (o *Options) ensureStores() error {
	for _, dir := range []string{o.CacheDir, o.SourceStore, o.VCSStore, o.ScratchDir} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// chownToBuilder hands a build directory to the build identity. Only
// meaningful when the tool itself runs elevated; otherwise the directory
// already belongs to the right user.
func (o *Options) chownToBuilder(dir string) error {
	if os.Geteuid() != 0 {
		return nil
	}
	if err := os.Chown(dir, int(o.Builder.UID), int(o.Builder.GID)); err != nil {
		return fmt.Errorf("failed to chown %s to %s: %w", dir, o.Builder.Username, err)
	}
	return nil
}

// chownTreeToBuilder transfers a whole checkout to the build identity, so
// that builds running as that identity can write to it.
func (o *Options) chownTreeToBuilder(dir string) error {
	if os.Geteuid() != 0 {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, _ os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return os.Chown(path, int(o.Builder.UID), int(o.Builder.GID))
	})
}
