package feed

import (
	"context"
	"fmt"

	"github.com/pkgfed/pkgfed/pkg/framework"
)

// Kind discriminates the feed variants in a source catalog.
type Kind string

const (
	// KindRemote is an HTTP JSON feed.
	KindRemote Kind = "remote"

	// KindLocal is a folder feed on the local filesystem.
	KindLocal Kind = "local"

	// KindArchive is a payload-only source (a folder of package
	// archives with no metadata documents). Archive sources cannot
	// answer dependency queries and are skipped by gather.
	KindArchive Kind = "archive"
)

// Source is a tagged reference to a configured package feed.
type Source struct {
	Name      string // unique name within the catalog
	URL       string // remote feeds: base URL
	Path      string // local and archive feeds: folder path
	Kind      Kind
	Enabled   bool
	APIKeyEnv string // env var holding the feed credential, if any
}

// SupportsDependencyQuery reports whether this source kind can answer
// dependency metadata queries. Sources that cannot are silently excluded
// from gather; that is a property of the catalog, not an error.
func (s *Source) SupportsDependencyQuery() bool {
	switch s.Kind {
	case KindRemote, KindLocal:
		return true
	default:
		return false
	}
}

// Validate checks that the source reference is well formed.
func (s *Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source has no name")
	}
	switch s.Kind {
	case KindRemote:
		if s.URL == "" {
			return fmt.Errorf("remote source %q has no url", s.Name)
		}
	case KindLocal, KindArchive:
		if s.Path == "" {
			return fmt.Errorf("%s source %q has no path", s.Kind, s.Name)
		}
	default:
		return fmt.Errorf("source %q has unknown kind %q", s.Name, s.Kind)
	}
	return nil
}

// String returns the source name.
func (s *Source) String() string { return s.Name }

// DependencyProvider answers dependency metadata queries against one
// feed. Implementations must be safe for concurrent use: the gather
// pipeline issues overlapping queries from multiple goroutines.
type DependencyProvider interface {
	// ResolveIdentities returns zero or one PackageInfo per requested
	// identity, each narrowed to the target framework. Output order is
	// unspecified; callers match by identity. Identities unknown to the
	// feed are simply absent from the result.
	ResolveIdentities(ctx context.Context, ids []Identity, target framework.Framework, includePrerelease bool) ([]PackageInfo, error)

	// ResolveID returns every listed stable version of the id the feed
	// knows about (plus prereleases, listed or unlisted, when
	// includePrerelease is set), each narrowed to the target framework.
	// Output may be empty.
	ResolveID(ctx context.Context, id string, target framework.Framework, includePrerelease bool) ([]PackageInfo, error)
}

// ProviderRegistry performs the capability query: given a source
// reference, it either constructs that source's DependencyProvider or
// reports that the source has none. Registries are explicit
// collaborators constructed per gather invocation; there is no global
// provider factory.
type ProviderRegistry interface {
	ProviderFor(src *Source) (DependencyProvider, bool)
}

// ProviderRegistryFunc adapts a function to the ProviderRegistry
// interface, mirroring http.HandlerFunc.
type ProviderRegistryFunc func(src *Source) (DependencyProvider, bool)

// ProviderFor implements ProviderRegistry.
func (f ProviderRegistryFunc) ProviderFor(src *Source) (DependencyProvider, bool) {
	return f(src)
}
