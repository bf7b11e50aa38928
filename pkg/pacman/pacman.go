package pacman

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultLockFile is the host package manager's database lock marker.
const DefaultLockFile = "/var/lib/pacman/db.lck"

// Pacman shells out to the host package manager. Subprocess exit status is
// the only success signal; output is inherited by the terminal rather than
// parsed, except for the sync-database queries that need it.
type Pacman struct {
	// Cmd is the binary to invoke, "pacman" unless overridden by tests.
	Cmd string

	// Elevator wraps mutating calls, typically "sudo". Empty means the
	// current process is already privileged enough.
	Elevator string
}

func New() *Pacman {
	p := &Pacman{Cmd: "pacman"}
	if os.Geteuid() != 0 {
		p.Elevator = "sudo"
	}
	return p
}

func (p *Pacman) run(ctx context.Context, elevated bool, args ...string) error {
	name := p.Cmd
	if elevated && p.Elevator != "" {
		name = p.Elevator
		args = append([]string{p.Cmd}, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// InstallFromTarballs runs a direct install of already-built artifact files.
func (p *Pacman) InstallFromTarballs(ctx context.Context, flags, paths []string) error {
	args := append(append([]string{"-U"}, flags...), paths...)
	if err := p.run(ctx, true, args...); err != nil {
		return fmt.Errorf("failed to install built artifacts: %w", err)
	}
	return nil
}

// InstallFromRepos installs packages straight from the sync repositories.
func (p *Pacman) InstallFromRepos(ctx context.Context, flags, names []string) error {
	args := append(append([]string{"-S"}, flags...), names...)
	if err := p.run(ctx, true, args...); err != nil {
		return fmt.Errorf("failed to install from repositories: %w", err)
	}
	return nil
}

// IsInstalled queries the install status of a single package.
func (p *Pacman) IsInstalled(ctx context.Context, name string) bool {
	cmd := exec.CommandContext(ctx, p.Cmd, "-Qq", name)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run() == nil
}

// SyncInfo queries the sync databases for the given names in one call and
// returns the parsed records for those that exist.
func (p *Pacman) SyncInfo(ctx context.Context, names []string) (map[string]SyncRecord, error) {
	args := append([]string{"-Si"}, names...)
	cmd := exec.CommandContext(ctx, p.Cmd, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard

	// a nonzero exit with output just means some names were unknown
	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("failed to query sync databases: %w", err)
	}

	return parseSyncInfo(stdout.String()), nil
}

// SyncRecord is one package's entry in a sync database.
type SyncRecord struct {
	Repository string
	Name       string
	Version    string
	Depends    []string
}

func parseSyncInfo(out string) map[string]SyncRecord {
	records := map[string]SyncRecord{}

	var cur SyncRecord
	flush := func() {
		if cur.Name != "" {
			records[cur.Name] = cur
		}
		cur = SyncRecord{}
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "Repository":
			cur.Repository = val
		case "Name":
			cur.Name = val
		case "Version":
			cur.Version = val
		case "Depends On":
			if val != "None" {
				cur.Depends = strings.Fields(val)
			}
		}
	}
	flush()

	return records
}

// LinePrompter blocks for a line of human input.
type LinePrompter interface {
	Line(msg string) (string, error)
}

// WaitForLock blocks until the database lock marker is gone. While it is
// present the user must confirm each re-check; abandoning the prompt aborts
// the whole operation.
func WaitForLock(lockFile string, p LinePrompter) error {
	for {
		if _, err := os.Stat(lockFile); os.IsNotExist(err) {
			return nil
		}
		msg := fmt.Sprintf("database lock %s is present; press enter to check again... ", lockFile)
		if _, err := p.Line(msg); err != nil {
			return fmt.Errorf("abandoned waiting for database lock: %w", err)
		}
	}
}
