// Package registry wires configured feed sources to their dependency
// query adapters.
//
// The registry is the capability query the gather pipeline performs per
// source: remote and local feeds get an adapter, archive feeds (and
// disabled entries) report no capability and are silently excluded.
// A registry is constructed per gather invocation; it holds no global
// state beyond the cache backend and TTL handed to it.
package registry

import (
	"os"
	"time"

	"github.com/pkgfed/pkgfed/pkg/cache"
	"github.com/pkgfed/pkgfed/pkg/feed"
	"github.com/pkgfed/pkgfed/pkg/feeds"
	"github.com/pkgfed/pkgfed/pkg/feeds/local"
	"github.com/pkgfed/pkgfed/pkg/feeds/remote"
)

// Registry resolves the dependency query capability for feed sources.
type Registry struct {
	backend cache.Cache
	ttl     time.Duration
}

// New creates a registry whose remote adapters share the given cache
// backend. Pass a NullCache to disable caching.
func New(backend cache.Cache, ttl time.Duration) *Registry {
	return &Registry{backend: backend, ttl: ttl}
}

// ProviderFor implements feed.ProviderRegistry. Disabled sources and
// kinds without the query capability return false.
func (r *Registry) ProviderFor(src *feed.Source) (feed.DependencyProvider, bool) {
	if !src.Enabled || !src.SupportsDependencyQuery() {
		return nil, false
	}

	switch src.Kind {
	case feed.KindRemote:
		return remote.NewClient(src, feeds.NewClient(r.backend, r.ttl, headersFor(src))), true
	case feed.KindLocal:
		return local.New(src), true
	default:
		return nil, false
	}
}

// headersFor builds the default headers for a remote feed, resolving the
// credential env var named in the source catalog.
func headersFor(src *feed.Source) map[string]string {
	if src.APIKeyEnv == "" {
		return nil
	}
	key := os.Getenv(src.APIKeyEnv)
	if key == "" {
		return nil
	}
	return map[string]string{"X-Feed-ApiKey": key}
}

var _ feed.ProviderRegistry = (*Registry)(nil)
