package versions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
)

// Version is a parsed pacman-style package version of the shape
// [epoch:]pkgver[-pkgrel]. The pkgver component is held as a structured
// go-version value so it can be compared segment-wise.
type Version struct {
	Epoch   int
	Ver     *version.Version
	Release string
}

// Parse parses a pacman-style version string. Parsing is best-effort: callers
// that can live without a structured version should treat an error as "no
// structured version" rather than failing their whole operation.
func Parse(v string) (*Version, error) {
	out := &Version{}

	if epoch, rest, ok := strings.Cut(v, ":"); ok {
		e, err := strconv.Atoi(epoch)
		if err != nil {
			return nil, fmt.Errorf("invalid epoch in version %q: %w", v, err)
		}
		out.Epoch = e
		v = rest
	}

	if ver, rel, ok := cutLast(v, "-"); ok {
		out.Release = rel
		v = ver
	}

	// some AUR packages separate pre-release info with an underscore
	parsed, err := version.NewVersion(strings.ReplaceAll(v, "_", "-"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse version %q: %w", v, err)
	}
	out.Ver = parsed

	return out, nil
}

// cutLast is strings.Cut around the last occurrence of sep.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func (v *Version) String() string {
	var sb strings.Builder
	if v.Epoch > 0 {
		fmt.Fprintf(&sb, "%d:", v.Epoch)
	}
	sb.WriteString(v.Ver.Original())
	if v.Release != "" {
		sb.WriteString("-" + v.Release)
	}
	return sb.String()
}

// Compare returns -1, 0 or 1 depending on whether v is older than, equal to,
// or newer than o. Epoch dominates, then pkgver, then a numeric comparison of
// pkgrel (non-numeric releases compare as strings).
func (v *Version) Compare(o *Version) int {
	if v.Epoch != o.Epoch {
		if v.Epoch < o.Epoch {
			return -1
		}
		return 1
	}
	if c := v.Ver.Compare(o.Ver); c != 0 {
		return c
	}
	return compareRelease(v.Release, o.Release)
}

func compareRelease(a, b string) int {
	ai, aerr := strconv.ParseFloat(a, 64)
	bi, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// ByLatest sorts parsed versions oldest first.
type ByLatest []*Version

func (u ByLatest) Len() int {
	return len(u)
}

func (u ByLatest) Swap(i, j int) {
	u[i], u[j] = u[j], u[i]
}

func (u ByLatest) Less(i, j int) bool {
	return u[i].Compare(u[j]) < 0
}
