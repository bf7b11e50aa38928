package cache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Entry is one parsed artifact filename from the package cache:
// name-version-release-architecture plus the artifact extension.
type Entry struct {
	Name    string
	Version string
	Release string
	Arch    string

	// Path is the original path the entry was parsed from.
	Path string
}

// Index is an in-memory view of a cache directory listing. It is rebuilt on
// every read; there is no persistent index file.
type Index struct {
	entries []Entry
	byName  map[string][]Entry
}

// ParseFilename parses an artifact filename like
// "foo-1.0-1-x86_64.pkg.tar.zst". The boolean is false for anything that is
// not a package artifact; such files are simply not part of the cache index.
func ParseFilename(path string) (Entry, bool) {
	base := filepath.Base(path)

	stem, _, found := strings.Cut(base, ".pkg.tar")
	if !found {
		return Entry{}, false
	}

	// rightmost fields are fixed: ...-version-release-arch
	fields := strings.Split(stem, "-")
	if len(fields) < 4 {
		return Entry{}, false
	}

	arch := fields[len(fields)-1]
	release := fields[len(fields)-2]
	version := fields[len(fields)-3]
	name := strings.Join(fields[:len(fields)-3], "-")

	if name == "" || version == "" || release == "" || arch == "" {
		return Entry{}, false
	}

	return Entry{
		Name:    name,
		Version: version,
		Release: release,
		Arch:    arch,
		Path:    path,
	}, true
}

// NewIndex builds an index from a raw directory listing. Filenames that do
// not parse as package artifacts are dropped silently.
func NewIndex(listing []string) Index {
	idx := Index{byName: map[string][]Entry{}}
	for _, path := range listing {
		e, ok := ParseFilename(path)
		if !ok {
			continue
		}
		idx.entries = append(idx.entries, e)
		idx.byName[e.Name] = append(idx.byName[e.Name], e)
	}
	return idx
}

// Read lists dir and builds an index from its contents.
func Read(dir string) (Index, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return Index{}, err
	}
	listing := lo.Map(des, func(de os.DirEntry, _ int) string {
		return filepath.Join(dir, de.Name())
	})
	return NewIndex(listing), nil
}

// Lookup returns the subset of the requested names that have at least one
// cached artifact, regardless of version. Input order is preserved.
func (i Index) Lookup(names []string) []string {
	return lo.Filter(names, func(name string, _ int) bool {
		return len(i.byName[name]) > 0
	})
}

// Search returns the paths of all entries whose filename contains the given
// substring, in listing order.
func (i Index) Search(substring string) []string {
	var paths []string
	for _, e := range i.entries {
		if strings.Contains(filepath.Base(e.Path), substring) {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// Entries exposes the parsed entries in listing order.
func (i Index) Entries() []Entry {
	return i.entries
}
