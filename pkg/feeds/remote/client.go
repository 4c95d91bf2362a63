// Package remote implements the dependency query capability for HTTP
// JSON feeds.
//
// The wire protocol is three GET endpoints under the feed base URL:
//
//	/v1/index.json                      service index
//	/v1/package/{id}/index.json         all releases of an id
//	/v1/package/{id}/{version}.json     one release
//
// Package ids are lowercased in URLs; documents carry the canonical
// casing. A 404 on a package endpoint means the feed simply doesn't host
// the package and yields an empty result, not an error.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	pkgerrors "github.com/pkgfed/pkgfed/pkg/errors"
	"github.com/pkgfed/pkgfed/pkg/feed"
	"github.com/pkgfed/pkgfed/pkg/feeds"
	"github.com/pkgfed/pkgfed/pkg/framework"
	"github.com/pkgfed/pkgfed/pkg/version"
)

// Client answers dependency queries against one remote feed.
// Safe for concurrent use.
type Client struct {
	*feeds.Client
	src     *feed.Source
	baseURL string
}

// NewClient creates an adapter for src backed by the shared HTTP client.
func NewClient(src *feed.Source, shared *feeds.Client) *Client {
	return &Client{
		Client:  shared,
		src:     src,
		baseURL: strings.TrimSuffix(src.URL, "/"),
	}
}

// ResolveIdentities fetches the release document for each identity,
// narrowed to the target framework. Identities the feed doesn't host are
// absent from the result.
func (c *Client) ResolveIdentities(ctx context.Context, ids []feed.Identity, target framework.Framework, includePrerelease bool) ([]feed.PackageInfo, error) {
	var out []feed.PackageInfo
	for _, ident := range ids {
		doc, found, err := c.versionDoc(ctx, ident.ID, ident.Version)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		info, err := doc.PackageInfo(target)
		if err != nil {
			return nil, c.translate(err, ident.ID)
		}
		if info.Identity.Version.IsPrerelease() && !includePrerelease {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// ResolveID fetches every release of id the feed hosts, narrowed to the
// target framework. Unknown ids yield an empty result.
func (c *Client) ResolveID(ctx context.Context, id string, target framework.Framework, includePrerelease bool) ([]feed.PackageInfo, error) {
	rawURL := fmt.Sprintf("%s/v1/package/%s/index.json", c.baseURL, escape(id))
	key := c.cacheKey("package-index", id)

	var doc feeds.PackageIndexDoc
	if err := c.GetJSON(ctx, key, rawURL, &doc); err != nil {
		if errors.Is(err, feeds.ErrNotFound) {
			return nil, nil
		}
		return nil, c.translate(err, id)
	}

	var out []feed.PackageInfo
	for _, vd := range doc.Versions {
		if vd.ID == "" {
			vd.ID = doc.ID
		}
		info, err := vd.PackageInfo(target)
		if err != nil {
			return nil, c.translate(err, id)
		}
		if !feeds.Include(info.Identity.Version, info.Listed, includePrerelease) {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

func (c *Client) versionDoc(ctx context.Context, id string, v version.Version) (feeds.VersionDoc, bool, error) {
	rawURL := fmt.Sprintf("%s/v1/package/%s/%s.json", c.baseURL, escape(id), escape(v.Normalize()))
	key := c.cacheKey("package-version", id, v.Normalize())

	var doc feeds.VersionDoc
	if err := c.GetJSON(ctx, key, rawURL, &doc); err != nil {
		if errors.Is(err, feeds.ErrNotFound) {
			return feeds.VersionDoc{}, false, nil
		}
		return feeds.VersionDoc{}, false, c.translate(err, id)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc, true, nil
}

// translate maps client sentinels onto the gather error codes, tagging
// the failure with the feed name and package id.
func (c *Client) translate(err error, id string) error {
	switch {
	case errors.Is(err, feeds.ErrMalformed):
		return pkgerrors.Wrap(pkgerrors.ErrCodeSourceMalformed, err, "feed %s returned an unparseable document for %s", c.src.Name, id)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return pkgerrors.Wrap(pkgerrors.ErrCodeSourceUnavailable, err, "feed %s unreachable querying %s", c.src.Name, id)
	}
}

func (c *Client) cacheKey(kind string, parts ...string) string {
	all := append([]string{c.baseURL, kind}, parts...)
	return "feed:" + strings.ToLower(strings.Join(all, "|"))
}

func escape(s string) string {
	return url.PathEscape(strings.ToLower(s))
}

var _ feed.DependencyProvider = (*Client)(nil)
