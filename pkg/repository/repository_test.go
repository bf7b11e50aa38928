package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurtool/aurctl/pkg/packages"
)

// mapRepo resolves a fixed set of names, tagging each found package with the
// repo's label so tests can see which backend answered.
type mapRepo struct {
	label string
	known map[string]bool
	calls int
}

func (m *mapRepo) Lookup(_ context.Context, names []string) (Result, error) {
	m.calls++
	var res Result
	for _, n := range names {
		if m.known[n] {
			res.Found = append(res.Found, packages.Package{Name: n, Install: packages.Pacman{Repo: m.label}})
		} else {
			res.NotFound = append(res.NotFound, n)
		}
	}
	return res, nil
}

func TestComposeFallsThrough(t *testing.T) {
	a := &mapRepo{label: "a", known: map[string]bool{"foo": true}}
	b := &mapRepo{label: "b", known: map[string]bool{"bar": true}}

	res, err := Compose(a, b).Lookup(context.Background(), []string{"foo", "bar", "baz"})
	require.NoError(t, err)

	assert.Equal(t, []string{"baz"}, res.NotFound)
	require.Len(t, res.Found, 2)
	assert.Equal(t, "foo", res.Found[0].Name)
	assert.Equal(t, packages.Pacman{Repo: "a"}, res.Found[0].Install)
	assert.Equal(t, "bar", res.Found[1].Name)
	assert.Equal(t, packages.Pacman{Repo: "b"}, res.Found[1].Install)
}

func TestComposeShortCircuits(t *testing.T) {
	a := &mapRepo{label: "a", known: map[string]bool{"foo": true, "bar": true}}
	b := &mapRepo{label: "b", known: map[string]bool{"foo": true}}

	res, err := Compose(a, b).Lookup(context.Background(), []string{"foo", "bar"})
	require.NoError(t, err)

	assert.Empty(t, res.NotFound)
	assert.Equal(t, 1, a.calls)
	assert.Zero(t, b.calls, "second backend must not be queried when the first resolves everything")
}

func TestEmptyIsIdentity(t *testing.T) {
	names := []string{"foo", "bar", "baz"}
	r := &mapRepo{label: "r", known: map[string]bool{"foo": true, "baz": true}}

	plain, err := r.Lookup(context.Background(), names)
	require.NoError(t, err)

	left, err := Compose(Empty(), r).Lookup(context.Background(), names)
	require.NoError(t, err)
	assert.Equal(t, plain, left)

	right, err := Compose(r, Empty()).Lookup(context.Background(), names)
	require.NoError(t, err)
	assert.Equal(t, plain, right)
}

func TestComposeIsAssociative(t *testing.T) {
	names := []string{"one", "two", "three", "four"}

	mk := func(label string, known ...string) *mapRepo {
		m := map[string]bool{}
		for _, k := range known {
			m[k] = true
		}
		return &mapRepo{label: label, known: m}
	}

	lhs, err := Compose(Compose(mk("a", "one"), mk("b", "two")), mk("c", "three")).
		Lookup(context.Background(), names)
	require.NoError(t, err)

	rhs, err := Compose(mk("a", "one"), Compose(mk("b", "two"), mk("c", "three"))).
		Lookup(context.Background(), names)
	require.NoError(t, err)

	assert.Equal(t, lhs, rhs)
	assert.Equal(t, []string{"four"}, lhs.NotFound)
}

func TestEmptyLookup(t *testing.T) {
	res, err := Empty().Lookup(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, res.NotFound)
	assert.Empty(t, res.Found)
}
