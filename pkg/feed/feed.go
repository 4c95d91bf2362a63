// Package feed defines the package feed data model shared by the feed
// adapters, the gather pipeline, and the CLI.
//
// The central types are [Identity] (a package release), [PackageInfo]
// (a release's metadata narrowed to one target framework), and
// [SourcedInfo] (a PackageInfo tagged with the feed that produced it).
// Feeds themselves are described by [Source], a tagged reference whose
// kind determines which capabilities it offers.
package feed

import (
	"fmt"
	"strings"

	"github.com/pkgfed/pkgfed/pkg/version"
)

// Identity names a package release: a case-insensitive package id plus
// a structural version.
type Identity struct {
	ID      string
	Version version.Version
}

// NewIdentity parses a version string into an Identity.
func NewIdentity(id, ver string) (Identity, error) {
	if strings.TrimSpace(id) == "" {
		return Identity{}, fmt.Errorf("empty package id")
	}
	v, err := version.Parse(ver)
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: id, Version: v}, nil
}

// Equal reports identity equality: case-insensitive on id, structural
// on version.
func (i Identity) Equal(o Identity) bool {
	return strings.EqualFold(i.ID, o.ID) && i.Version.Equal(o.Version)
}

// Key returns a canonical map key: folded id and normalized version.
func (i Identity) Key() string {
	return strings.ToLower(i.ID) + "/" + i.Version.Normalize()
}

// String returns "id@version" with the id's original casing.
func (i Identity) String() string {
	return i.ID + "@" + i.Version.Normalize()
}

// Dependency declares that a package needs some version of another
// package. The range is opaque to the gather pipeline; only the id
// drives discovery.
type Dependency struct {
	ID    string
	Range version.Range
}

// DependencyGroup scopes an ordered dependency list to one target
// framework. Packages declare zero or more groups; adapters narrow them
// to a single list with [NarrowGroups] before metadata leaves the feed
// layer.
type DependencyGroup struct {
	Framework    string
	Dependencies []Dependency
}

// PackageInfo is a package release's metadata narrowed to the caller's
// target framework. Immutable once returned by an adapter.
type PackageInfo struct {
	Identity     Identity
	Listed       bool
	Dependencies []Dependency
}

// SourcedInfo pairs a PackageInfo with the feed that produced it. Two
// SourcedInfos are the same candidate iff their identities are equal and
// they came from the same feed; the same release offered by two feeds
// stays as two candidates so a downstream resolver can pick the winning
// feed per release.
type SourcedInfo struct {
	PackageInfo
	Source *Source
}

// Key returns the candidate identity: identity key plus feed name.
func (s SourcedInfo) Key() string {
	return s.PackageInfo.Identity.Key() + "@" + s.Source.Name
}
