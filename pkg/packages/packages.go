package packages

import (
	"strings"

	"github.com/aurtool/aurctl/pkg/versions"
)

// DemandOp is the comparison operator of a version demand.
type DemandOp int

const (
	// Any places no constraint on the version.
	Any DemandOp = iota
	Less
	AtLeast
	More
	Exact
)

// VersionDemand is a version constraint attached to a dependency, e.g. the
// ">=1.2" in "gcc>=1.2".
type VersionDemand struct {
	Op      DemandOp
	Version string
}

func (d VersionDemand) String() string {
	switch d.Op {
	case Less:
		return "<" + d.Version
	case AtLeast:
		return ">=" + d.Version
	case More:
		return ">" + d.Version
	case Exact:
		return "=" + d.Version
	default:
		return ""
	}
}

// Dep is a single dependency declaration: a package name plus an optional
// version demand.
type Dep struct {
	Name   string
	Demand VersionDemand
}

func (d Dep) String() string {
	return d.Name + d.Demand.String()
}

// depOps are checked in order; ">=" must come before ">" and "=".
var depOps = []struct {
	token string
	op    DemandOp
}{
	{">=", AtLeast},
	{">", More},
	{"<", Less},
	{"=", Exact},
}

// ParseDep parses a dependency token like "foo>=1.2". It is total: a token
// with no recognisable operator is a bare name with no version demand.
func ParseDep(token string) Dep {
	cut := len(token)
	var op DemandOp

	for _, candidate := range depOps {
		if i := strings.Index(token, candidate.token); i >= 0 && i < cut {
			cut = i
			op = candidate.op
		}
	}

	if cut == len(token) {
		return Dep{Name: token}
	}

	name := token[:cut]
	rest := token[cut:]
	for _, candidate := range depOps {
		if strings.HasPrefix(rest, candidate.token) {
			return Dep{Name: name, Demand: VersionDemand{Op: candidate.op, Version: rest[len(candidate.token):]}}
		}
	}
	// unreachable: cut < len(token) implies an operator prefix
	return Dep{Name: token, Demand: VersionDemand{Op: op}}
}

// ParseDeps parses a list of dependency tokens.
func ParseDeps(tokens []string) []Dep {
	if len(tokens) == 0 {
		return nil
	}
	deps := make([]Dep, 0, len(tokens))
	for _, t := range tokens {
		deps = append(deps, ParseDep(t))
	}
	return deps
}

// Buildable is a package that has to be built from source before it can be
// installed. Base may differ from Name: a split package has several
// installable names produced by one build of the shared base.
type Buildable struct {
	Name     string
	Base     string
	PKGBUILD string
	Provides []string
	Deps     []Dep

	// Version is best-effort; nil when the upstream version string did not
	// parse.
	Version *versions.Version

	// Explicit marks packages the user asked for by name, as opposed to ones
	// pulled in as dependencies.
	Explicit bool

	// Namespace holds the variables declared by the build script, so callers
	// can introspect or override them without re-parsing the script. Opaque
	// at this layer.
	Namespace map[string]string
}

// InstallType says how a resolved package gets onto the system: either the
// host package manager installs it directly from a sync repository, or it has
// to be built first.
type InstallType interface {
	isInstallType()
}

// Pacman is the InstallType of packages resolvable from a sync repository.
type Pacman struct {
	Repo string
}

// Build is the InstallType of packages that need a source build.
type Build struct {
	Buildable *Buildable
}

func (Pacman) isInstallType() {}
func (Build) isInstallType()  {}

// Package is a resolved package: name, version, dependencies and the way it
// gets installed.
type Package struct {
	Name    string
	Version string
	Deps    []Dep
	Install InstallType
}

// Partition splits resolved packages into names the host package manager can
/// install directly and units that need to be built. The split is stable:
// relative order within each group matches the input.
func Partition(pkgs []Package) (repoNames []string, builds []*Buildable) {
	for _, p := range pkgs {
		switch it := p.Install.(type) {
		case Pacman:
			repoNames = append(repoNames, p.Name)
		case Build:
			builds = append(builds, it.Buildable)
		}
	}
	return repoNames, builds
}
