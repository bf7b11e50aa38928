package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// copyInto copies src into destDir, preferring a copy-on-write clone when
// the filesystem supports it. Returns the final path.
func copyInto(src, destDir string) (string, error) {
	dst := filepath.Join(destDir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	// reflink fails across filesystems and on filesystems without CoW
	if err := unix.IoctlFileClone(int(out.Fd()), int(in.Fd())); err == nil {
		return dst, nil
	}

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return dst, nil
}
