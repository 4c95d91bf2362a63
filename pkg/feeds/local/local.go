// Package local implements the dependency query capability for folder
// feeds.
//
// A folder feed is a directory tree of metadata documents:
//
//	{root}/{id}/{version}/metadata.json
//
// using the same document schema as remote feeds. Directory names are
// matched case-insensitively; a missing package directory yields an
// empty result, not an error.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkgfed/pkgfed/pkg/errors"
	"github.com/pkgfed/pkgfed/pkg/feed"
	"github.com/pkgfed/pkgfed/pkg/feeds"
	"github.com/pkgfed/pkgfed/pkg/framework"
	"github.com/pkgfed/pkgfed/pkg/version"
)

// MetadataFile is the per-release document name inside a folder feed.
const MetadataFile = "metadata.json"

// Provider answers dependency queries against one folder feed.
// Stateless apart from the source reference; safe for concurrent use.
type Provider struct {
	src  *feed.Source
	root string
}

// New creates an adapter for the folder feed at src.Path.
func New(src *feed.Source) *Provider {
	return &Provider{src: src, root: src.Path}
}

// ResolveIdentities loads the release document for each identity,
// narrowed to the target framework. Identities the folder doesn't hold
// are absent from the result.
func (p *Provider) ResolveIdentities(ctx context.Context, ids []feed.Identity, target framework.Framework, includePrerelease bool) ([]feed.PackageInfo, error) {
	var out []feed.PackageInfo
	for _, ident := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir, ok, err := p.packageDir(ident.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		verDir, ok, err := matchDir(dir, func(name string) bool {
			v, err := version.Parse(name)
			return err == nil && v.Equal(ident.Version)
		})
		if err != nil {
			return nil, p.unavailable(err, ident.ID)
		}
		if !ok {
			continue
		}

		info, found, err := p.load(filepath.Join(verDir, MetadataFile), ident.ID, target)
		if err != nil {
			return nil, err
		}
		if !found || (info.Identity.Version.IsPrerelease() && !includePrerelease) {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// ResolveID loads every release of id the folder holds, narrowed to the
// target framework. Unknown ids yield an empty result.
func (p *Provider) ResolveID(ctx context.Context, id string, target framework.Framework, includePrerelease bool) ([]feed.PackageInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, ok, err := p.packageDir(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, p.unavailable(err, id)
	}

	var out []feed.PackageInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, found, err := p.load(filepath.Join(dir, entry.Name(), MetadataFile), id, target)
		if err != nil {
			return nil, err
		}
		if !found || !feeds.Include(info.Identity.Version, info.Listed, includePrerelease) {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// packageDir locates the directory for id, matching case-insensitively.
func (p *Provider) packageDir(id string) (string, bool, error) {
	dir, ok, err := matchDir(p.root, func(name string) bool {
		return strings.EqualFold(name, id)
	})
	if err != nil {
		return "", false, p.unavailable(err, id)
	}
	return dir, ok, nil
}

// load reads and converts one metadata document. A missing file is a
// gap in the folder layout and is skipped rather than failed.
func (p *Provider) load(path, id string, target framework.Framework) (feed.PackageInfo, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return feed.PackageInfo{}, false, nil
	}
	if err != nil {
		return feed.PackageInfo{}, false, p.unavailable(err, id)
	}

	var doc feeds.VersionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return feed.PackageInfo{}, false, p.malformed(err, id)
	}
	if doc.ID == "" {
		doc.ID = id
	}

	info, err := doc.PackageInfo(target)
	if err != nil {
		return feed.PackageInfo{}, false, p.malformed(err, id)
	}
	return info, true, nil
}

func (p *Provider) unavailable(err error, id string) error {
	return pkgerrors.Wrap(pkgerrors.ErrCodeSourceUnavailable, err, "folder feed %s unreadable querying %s", p.src.Name, id)
}

func (p *Provider) malformed(err error, id string) error {
	return pkgerrors.Wrap(pkgerrors.ErrCodeSourceMalformed, err, "folder feed %s holds an unparseable document for %s", p.src.Name, id)
}

// matchDir returns the first subdirectory of dir whose name satisfies
// the predicate.
func matchDir(dir string, match func(string) bool) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, err
	}
	for _, entry := range entries {
		if entry.IsDir() && match(entry.Name()) {
			return filepath.Join(dir, entry.Name()), true, nil
		}
	}
	return "", false, nil
}

var _ feed.DependencyProvider = (*Provider)(nil)
