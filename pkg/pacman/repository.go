package pacman

import (
	"context"

	"github.com/aurtool/aurctl/pkg/packages"
	"github.com/aurtool/aurctl/pkg/repository"
)

// SyncRepository resolves names against the host package manager's sync
// databases. Anything it finds can be installed directly, without a build.
type SyncRepository struct {
	Pacman *Pacman
}

var _ repository.Repository = (*SyncRepository)(nil)

func (s *SyncRepository) Lookup(ctx context.Context, names []string) (repository.Result, error) {
	records, err := s.Pacman.SyncInfo(ctx, names)
	if err != nil {
		return repository.Result{}, err
	}

	var res repository.Result
	for _, name := range names {
		rec, ok := records[name]
		if !ok {
			res.NotFound = append(res.NotFound, name)
			continue
		}
		res.Found = append(res.Found, packages.Package{
			Name:    rec.Name,
			Version: rec.Version,
			Deps:    packages.ParseDeps(rec.Depends),
			Install: packages.Pacman{Repo: rec.Repository},
		})
	}
	return res, nil
}
