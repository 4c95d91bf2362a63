// Package framework models target compatibility profiles.
//
// A package can declare several dependency groups, each scoped to a
// framework moniker ("net8.0", "netstandard2.0", ...). Feed adapters use
// [Nearest] to narrow a package's groups to the single group that best
// matches the caller's target before metadata ever reaches the gather
// pipeline.
package framework

import (
	"fmt"
	"strings"
)

// Framework is a target compatibility profile, identified by its
// lowercased moniker. The zero value is invalid; use [Any] for the
// profile that matches everything.
type Framework struct {
	moniker string
}

// Any matches every framework. For a specific target an "any" group is
// the last resort; for an Any target an "any" group is preferred. Use it
// when the caller has no target preference.
var Any = Framework{moniker: "any"}

// precedence lists known monikers from most to least specific. Narrowing
// ties between equally compatible groups are broken by this order.
var precedence = []string{
	"net10.0",
	"net9.0",
	"net8.0",
	"net7.0",
	"net6.0",
	"net5.0",
	"netcoreapp3.1",
	"netstandard2.1",
	"netstandard2.0",
	"netstandard1.6",
	"netstandard1.3",
	"netstandard1.0",
	"any",
}

// compatible maps a target moniker to the monikers it can consume,
// ordered nearest first. A target always consumes its own moniker and
// "any"; the table adds the cross-family fallbacks.
var compatible = map[string][]string{
	"net10.0":        {"net10.0", "net9.0", "net8.0", "net7.0", "net6.0", "net5.0", "netcoreapp3.1", "netstandard2.1", "netstandard2.0", "netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"net9.0":         {"net9.0", "net8.0", "net7.0", "net6.0", "net5.0", "netcoreapp3.1", "netstandard2.1", "netstandard2.0", "netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"net8.0":         {"net8.0", "net7.0", "net6.0", "net5.0", "netcoreapp3.1", "netstandard2.1", "netstandard2.0", "netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"net7.0":         {"net7.0", "net6.0", "net5.0", "netcoreapp3.1", "netstandard2.1", "netstandard2.0", "netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"net6.0":         {"net6.0", "net5.0", "netcoreapp3.1", "netstandard2.1", "netstandard2.0", "netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"net5.0":         {"net5.0", "netcoreapp3.1", "netstandard2.1", "netstandard2.0", "netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"netcoreapp3.1":  {"netcoreapp3.1", "netstandard2.1", "netstandard2.0", "netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"netstandard2.1": {"netstandard2.1", "netstandard2.0", "netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"netstandard2.0": {"netstandard2.0", "netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"netstandard1.6": {"netstandard1.6", "netstandard1.3", "netstandard1.0", "any"},
	"netstandard1.3": {"netstandard1.3", "netstandard1.0", "any"},
	"netstandard1.0": {"netstandard1.0", "any"},
	"any":            {"any"},
}

// Parse returns the Framework for a moniker. Monikers are
// case-insensitive; "" and "any" both mean [Any].
func Parse(s string) (Framework, error) {
	m := strings.ToLower(strings.TrimSpace(s))
	if m == "" {
		return Any, nil
	}
	if _, ok := compatible[m]; !ok {
		return Framework{}, fmt.Errorf("unknown framework %q", s)
	}
	return Framework{moniker: m}, nil
}

// MustParse parses s and panics on error. Intended for tests.
func MustParse(s string) Framework {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the lowercased moniker.
func (f Framework) String() string { return f.moniker }

// IsAny reports whether f matches every framework.
func (f Framework) IsAny() bool { return f.moniker == "any" || f.moniker == "" }

// IsCompatible reports whether a package group declared for candidate can
// be consumed by the target f.
func (f Framework) IsCompatible(candidate Framework) bool {
	if candidate.IsAny() {
		return true
	}
	if f.IsAny() {
		return true
	}
	for _, m := range compatible[f.moniker] {
		if m == candidate.moniker {
			return true
		}
	}
	return false
}

// Nearest selects the candidate framework most specific to the target.
// Candidates the target cannot consume are skipped; among the rest the
// one appearing earliest in the target's compatibility order wins, with
// the precedence table breaking ties for "any" targets. Returns false if
// no candidate is compatible.
func Nearest(target Framework, candidates []Framework) (Framework, bool) {
	if target.IsAny() {
		// Unconstrained targets prefer an unconstrained group, falling
		// back to the most specific declared group.
		for _, c := range candidates {
			if c.IsAny() {
				return c, true
			}
		}
		best := -1
		var found Framework
		for _, c := range candidates {
			for i, m := range precedence {
				if c.moniker == m && (best == -1 || i < best) {
					best = i
					found = c
				}
			}
		}
		return found, best != -1
	}

	order := compatible[target.moniker]
	best := len(order)
	var found Framework
	for _, c := range candidates {
		m := c.moniker
		if c.IsAny() {
			m = "any"
		}
		for i, o := range order {
			if o == m && i < best {
				best = i
				found = c
			}
		}
	}
	return found, best != len(order)
}
