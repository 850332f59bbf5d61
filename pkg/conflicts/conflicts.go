// Package conflicts computes which enabled packages claim the same target
// files. Detection is pure and advisory: nothing here prevents enabling a
// conflicting pair, it only reports the overlap for the operator to resolve.
package conflicts

import (
	"sort"

	"github.com/emmy-sama/civmod/pkg/claims"
)

// Group is one conflicting target path and the enabled packages claiming it.
type Group struct {
	// TargetPath is the normalized path both packages would write.
	TargetPath string

	// PackageIDs holds the conflicting package IDs, sorted, always >= 2.
	PackageIDs []string
}

// Detect returns the conflict groups among the enabled packages: every
// claimed path whose claimants, restricted to enabledIDs, number two or
// more. Groups come back sorted by target path for stable display; the
// same inputs always produce the same groups.
func Detect(enabledIDs []string, index *claims.Index) []Group {
	if len(enabledIDs) < 2 || index == nil {
		return nil
	}

	enabled := make(map[string]struct{}, len(enabledIDs))
	for _, id := range enabledIDs {
		enabled[id] = struct{}{}
	}

	var groups []Group
	for _, path := range index.Paths() {
		var ids []string
		for _, id := range index.Claimants(path) {
			if _, ok := enabled[id]; ok {
				ids = append(ids, id)
			}
		}
		if len(ids) >= 2 {
			sort.Strings(ids)
			groups = append(groups, Group{TargetPath: path, PackageIDs: ids})
		}
	}
	return groups
}

// Involving returns the subset of groups that include the given package.
func Involving(groups []Group, id string) []Group {
	var out []Group
	for _, g := range groups {
		for _, pid := range g.PackageIDs {
			if pid == id {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
