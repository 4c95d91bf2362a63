package feeds

import (
	"fmt"

	"github.com/pkgfed/pkgfed/pkg/feed"
	"github.com/pkgfed/pkgfed/pkg/framework"
	"github.com/pkgfed/pkgfed/pkg/version"
)

// IndexDoc is a feed's service index document (GET {base}/v1/index.json).
type IndexDoc struct {
	Name     string `json:"name"`
	Protocol string `json:"protocol"`
}

// PackageIndexDoc lists every known release of one package id
// (GET {base}/v1/package/{id}/index.json).
type PackageIndexDoc struct {
	ID       string       `json:"id"`
	Versions []VersionDoc `json:"versions"`
}

// VersionDoc describes one package release with its full dependency
// group declaration (GET {base}/v1/package/{id}/{version}.json, and the
// elements of [PackageIndexDoc]).
type VersionDoc struct {
	ID      string     `json:"id"`
	Version string     `json:"version"`
	Listed  bool       `json:"listed"`
	Groups  []GroupDoc `json:"dependencyGroups,omitempty"`
}

// GroupDoc scopes a dependency list to a target framework.
type GroupDoc struct {
	Framework    string          `json:"targetFramework"`
	Dependencies []DependencyDoc `json:"dependencies,omitempty"`
}

// DependencyDoc declares a dependency on another package.
type DependencyDoc struct {
	ID    string `json:"id"`
	Range string `json:"range,omitempty"`
}

// PackageInfo converts the document into a record narrowed to the
// target framework. Returns ErrMalformed when the document carries an
// unparseable version or range.
func (d VersionDoc) PackageInfo(target framework.Framework) (feed.PackageInfo, error) {
	v, err := version.Parse(d.Version)
	if err != nil {
		return feed.PackageInfo{}, fmt.Errorf("%w: package %s: %v", ErrMalformed, d.ID, err)
	}

	groups := make([]feed.DependencyGroup, 0, len(d.Groups))
	for _, g := range d.Groups {
		deps := make([]feed.Dependency, 0, len(g.Dependencies))
		for _, dep := range g.Dependencies {
			rangeSpec := dep.Range
			if rangeSpec == "" {
				rangeSpec = "0.0.0"
			}
			r, err := version.ParseRange(rangeSpec)
			if err != nil {
				return feed.PackageInfo{}, fmt.Errorf("%w: package %s dependency %s: %v", ErrMalformed, d.ID, dep.ID, err)
			}
			deps = append(deps, feed.Dependency{ID: dep.ID, Range: r})
		}
		groups = append(groups, feed.DependencyGroup{Framework: g.Framework, Dependencies: deps})
	}

	return feed.PackageInfo{
		Identity:     feed.Identity{ID: d.ID, Version: v},
		Listed:       d.Listed,
		Dependencies: feed.NarrowGroups(groups, target),
	}, nil
}

// Include reports whether a release belongs in a resolve-by-id result:
// listed stable releases always, prereleases only when requested, and
// unlisted releases only when they are prereleases and prereleases were
// requested.
func Include(v version.Version, listed, includePrerelease bool) bool {
	if v.IsPrerelease() {
		return includePrerelease
	}
	return listed
}
