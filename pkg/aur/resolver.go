package aur

import (
	"context"

	"github.com/chainguard-dev/clog"
	"github.com/samber/lo"

	"github.com/aurtool/aurctl/pkg/packages"
	"github.com/aurtool/aurctl/pkg/pkgbuild"
	"github.com/aurtool/aurctl/pkg/repository"
	"github.com/aurtool/aurctl/pkg/versions"
)

// Resolver answers repository lookups from the remote archive. One metadata
// round trip covers the whole requested batch; build scripts are then fetched
// once per package base.
type Resolver struct {
	Client *Client

	// Explicit marks the resulting buildables as explicitly requested by the
	// user, as opposed to resolved as dependencies.
	Explicit bool
}

var _ repository.Repository = (*Resolver)(nil)

func (r *Resolver) Lookup(ctx context.Context, names []string) (repository.Result, error) {
	log := clog.FromContext(ctx)

	records, err := r.Client.Info(ctx, names)
	if err != nil {
		return repository.Result{}, err
	}

	byName := lo.KeyBy(records, func(rec Record) string { return rec.Name })

	// one fetch per base; split-package siblings share it
	scripts := map[string]string{}
	for _, rec := range records {
		if _, done := scripts[rec.PackageBase]; done {
			continue
		}
		script, err := r.Client.PKGBUILD(ctx, rec.PackageBase)
		if err != nil {
			// treated as not-found so the caller reports it alongside
			// genuinely missing packages
			log.Warnf("failed to fetch build script for %s: %v", rec.PackageBase, err)
			continue
		}
		scripts[rec.PackageBase] = script
	}

	var res repository.Result
	for _, name := range names {
		rec, ok := byName[name]
		if !ok {
			res.NotFound = append(res.NotFound, name)
			continue
		}
		script, ok := scripts[rec.PackageBase]
		if !ok {
			res.NotFound = append(res.NotFound, name)
			continue
		}

		b := r.toBuildable(ctx, rec, script)
		res.Found = append(res.Found, packages.Package{
			Name:    rec.Name,
			Version: rec.Version,
			Deps:    b.Deps,
			Install: packages.Build{Buildable: b},
		})
	}

	return res, nil
}

func (r *Resolver) toBuildable(ctx context.Context, rec Record, script string) *packages.Buildable {
	provides := rec.Provides
	if len(provides) == 0 {
		provides = []string{rec.Name}
	}

	// best-effort: an unparseable upstream version is carried as nil
	ver, err := versions.Parse(rec.Version)
	if err != nil {
		clog.FromContext(ctx).Debugf("unparseable version %q for %s: %v", rec.Version, rec.Name, err)
		ver = nil
	}

	return &packages.Buildable{
		Name:      rec.Name,
		Base:      rec.PackageBase,
		PKGBUILD:  script,
		Provides:  provides,
		Deps:      packages.ParseDeps(append(append([]string{}, rec.Depends...), rec.MakeDepends...)),
		Version:   ver,
		Explicit:  r.Explicit,
		Namespace: pkgbuild.Namespace(script),
	}
}
