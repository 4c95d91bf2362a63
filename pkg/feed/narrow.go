package feed

import (
	"github.com/pkgfed/pkgfed/pkg/framework"
)

// NarrowGroups reduces a package's dependency groups to the single list
// matching the target framework. The group whose framework is nearest to
// the target wins, with ties broken by the framework precedence table
// rather than declaration order. If no group is compatible the result is
// empty: the package is treated as compatible with no declared
// dependencies for that target.
//
// Groups with unparseable framework monikers are skipped; a feed that
// invents monikers should not be able to poison narrowing for the rest.
func NarrowGroups(groups []DependencyGroup, target framework.Framework) []Dependency {
	type parsed struct {
		fw    framework.Framework
		group DependencyGroup
	}

	candidates := make([]parsed, 0, len(groups))
	frameworks := make([]framework.Framework, 0, len(groups))
	for _, g := range groups {
		fw, err := framework.Parse(g.Framework)
		if err != nil {
			continue
		}
		candidates = append(candidates, parsed{fw: fw, group: g})
		frameworks = append(frameworks, fw)
	}

	nearest, ok := framework.Nearest(target, frameworks)
	if !ok {
		return nil
	}
	for _, c := range candidates {
		if c.fw == nearest {
			deps := make([]Dependency, len(c.group.Dependencies))
			copy(deps, c.group.Dependencies)
			return deps
		}
	}
	return nil
}
