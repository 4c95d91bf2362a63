// Package render turns a gather result into Graphviz visualizations.
//
// Nodes are candidate records, one per release per feed (keyed
// "id/version@feed", labeled with id and version), edges are declared
// dependencies, and node color encodes which feed produced the record,
// so cross-feed resolution chains are visible at a glance.
package render

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/pkgfed/pkgfed/pkg/feed"
)

// sourcePalette colors nodes by feed, cycling when a catalog has more
// feeds than colors.
var sourcePalette = []string{
	"lightblue", "lightyellow", "lightpink", "lightcyan",
	"lavender", "honeydew", "mistyrose", "aliceblue",
}

// ToDOT converts a gather snapshot to Graphviz DOT format. Edges point
// from a release to every release of its declared dependencies that is
// present in the snapshot; dependency ids that resolved nowhere get a
// dashed placeholder node.
func ToDOT(records []feed.SourcedInfo) string {
	colors := assignColors(records)

	var buf bytes.Buffer
	buf.WriteString("digraph gather {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	byID := make(map[string][]feed.SourcedInfo)
	for _, rec := range records {
		folded := strings.ToLower(rec.Identity.ID)
		byID[folded] = append(byID[folded], rec)
	}

	for _, rec := range records {
		label := fmt.Sprintf("%s\n%s", rec.Identity.ID, rec.Identity.Version.Normalize())
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n",
			nodeID(rec), label, colors[rec.Source.Name])
	}

	buf.WriteString("\n")
	missing := make(map[string]bool)
	for _, rec := range records {
		for _, dep := range rec.Dependencies {
			folded := strings.ToLower(dep.ID)
			targets := byID[folded]
			if len(targets) == 0 {
				if !missing[folded] {
					missing[folded] = true
					fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,dashed\"];\n", folded, dep.ID)
				}
				fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(rec), folded)
				continue
			}
			for _, target := range targets {
				fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(rec), nodeID(target))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

func nodeID(rec feed.SourcedInfo) string {
	return rec.Key()
}

// assignColors maps feed names to palette colors in sorted name order,
// so the same catalog always colors the same way.
func assignColors(records []feed.SourcedInfo) map[string]string {
	names := make(map[string]bool)
	for _, rec := range records {
		names[rec.Source.Name] = true
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	colors := make(map[string]string, len(sorted))
	for i, name := range sorted {
		colors[name] = sourcePalette[i%len(sourcePalette)]
	}
	return colors
}
