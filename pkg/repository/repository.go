package repository

import (
	"context"

	"github.com/aurtool/aurctl/pkg/packages"
)

// Result is the outcome of one batched lookup: the requested names that the
// backend could not resolve, and resolved packages for the rest.
type Result struct {
	NotFound []string
	Found    []packages.Package
}

// Repository resolves a batch of package names against one backend (the
// local sync databases, a remote archive, an overlay). A Repository is
// stateless: it holds configuration and client handles only, never session
// state. Per-name misses are reported through Result.NotFound; the error
// return is reserved for infrastructure failure such as an unreachable or
// malformed backend.
type Repository interface {
	Lookup(ctx context.Context, names []string) (Result, error)
}

type composed struct {
	first, second Repository
}

// Compose chains two repositories into one. The first backend sees the whole
// batch; the second is only queried for the names the first could not
// resolve, and is skipped entirely when nothing is missing. Compose is
// associative and Empty is its two-sided identity, so resolution chains of
// any length can be built by repeated composition.
func Compose(first, second Repository) Repository {
	return composed{first: first, second: second}
}

func (c composed) Lookup(ctx context.Context, names []string) (Result, error) {
	res, err := c.first.Lookup(ctx, names)
	if err != nil {
		return Result{}, err
	}
	if len(res.NotFound) == 0 {
		return res, nil
	}

	rest, err := c.second.Lookup(ctx, res.NotFound)
	if err != nil {
		return Result{}, err
	}

	return Result{
		NotFound: rest.NotFound,
		Found:    append(res.Found, rest.Found...),
	}, nil
}

type empty struct{}

// Empty returns the identity Repository: every requested name is reported as
// not found and nothing is queried.
func Empty() Repository {
	return empty{}
}

func (empty) Lookup(_ context.Context, names []string) (Result, error) {
	return Result{NotFound: names}, nil
}
