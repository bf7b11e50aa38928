package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config is the tool's on-disk configuration. Flags override whatever is
// loaded from the file; every field has a workable default.
type Config struct {
	// CacheDir holds built package artifacts.
	CacheDir string `yaml:"cacheDir"`

	// SourceStore holds source-only tarballs, separate from the cache.
	SourceStore string `yaml:"sourceStore"`

	// VCSStore holds the long-lived checkouts of version-control packages,
	// distinct from the ephemeral build area.
	VCSStore string `yaml:"vcsStore"`

	// ScratchDir is the ephemeral build area.
	ScratchDir string `yaml:"scratchDir"`

	// Builder is the unprivileged user that fetches sources and runs builds.
	Builder string `yaml:"builder"`

	// Editor is invoked for hotedit; falls back to $EDITOR.
	Editor string `yaml:"editor"`

	// SortByVotes orders search results by vote count instead of name.
	SortByVotes bool `yaml:"sortByVotes"`

	Hotedit bool `yaml:"hotedit"`
	Clean   bool `yaml:"clean"`

	// AURURL overrides the archive endpoint, mainly for testing.
	AURURL string `yaml:"aurUrl"`

	// LockFile is the host package manager's database lock marker.
	LockFile string `yaml:"lockFile"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	base := filepath.Join(xdg.CacheHome, "aurctl")
	return Config{
		CacheDir:    filepath.Join(base, "cache"),
		SourceStore: filepath.Join(base, "sources"),
		VCSStore:    filepath.Join(base, "vcs"),
		ScratchDir:  filepath.Join(base, "builds"),
		Builder:     "nobody",
		Editor:      editorFallback(),
		LockFile:    "/var/lib/pacman/db.lck",
	}
}

func editorFallback() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "aurctl", "config.yaml")
}

// Load reads the config file at path, layering it over the defaults. A
// missing file is not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
