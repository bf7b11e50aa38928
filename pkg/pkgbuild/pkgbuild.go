package pkgbuild

import (
	"regexp"
	"strings"
)

// vcsSuffixes are the naming conventions for packages that track a live
// version-control source rather than a fixed release.
var vcsSuffixes = []string{"-git", "-svn", "-hg", "-bzr", "-cvs", "-darcs", "-fossil"}

// IsVCS reports whether a package name follows the live-source naming
// convention, e.g. "neovim-git".
func IsVCS(name string) bool {
	for _, s := range vcsSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

var assignment = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

// Namespace extracts the top-level variable assignments from a PKGBUILD as an
// opaque key/value map, so callers can introspect or override script
// variables without shelling out to bash. Parsing is line-oriented and best
// effort: multi-line arrays are captured up to their closing parenthesis,
// function bodies and anything else unrecognised are skipped.
func Namespace(script string) map[string]string {
	ns := map[string]string{}

	lines := strings.Split(script, "\n")
	for i := 0; i < len(lines); i++ {
		m := assignment.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		key, val := m[1], m[2]

		if strings.HasPrefix(val, "(") && !strings.Contains(val, ")") {
			for i+1 < len(lines) {
				i++
				val += "\n" + lines[i]
				if strings.Contains(lines[i], ")") {
					break
				}
			}
		}

		ns[key] = unquote(strings.TrimSpace(val))
	}

	return ns
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
