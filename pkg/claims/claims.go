// Package claims maintains the derived index mapping target paths to the
// packages that claim them.
//
// Only the kinds in ClaimBearingKinds contribute claims. The target
// application runs other action kinds (database and text updates) against
// its own stores rather than files the deployment copies, so they are
// deliberately excluded from conflict detection. Widening coverage is a
// one-line change to the allow-list.
package claims

import (
	"sort"

	"github.com/emmy-sama/civmod/pkg/modinfo"
)

// ClaimBearingKinds is the explicit allow-list of action kinds that claim
// target files.
var ClaimBearingKinds = map[modinfo.ActionKind]bool{
	modinfo.ActionImportFiles: true,
	modinfo.ActionUIScripts:   true,
}

// IsClaimBearing reports whether actions of this kind claim target files.
func IsClaimBearing(kind modinfo.ActionKind) bool {
	return ClaimBearingKinds[kind]
}

// ClaimedActions returns the package's claim-bearing actions in order.
func ClaimedActions(m *modinfo.ModInfo) []modinfo.FileAction {
	var out []modinfo.FileAction
	for _, a := range m.Actions {
		if IsClaimBearing(a.Kind) {
			out = append(out, a)
		}
	}
	return out
}

// Index maps each normalized target path to the set of package IDs whose
// claim-bearing actions touch it. The index is derived state: it is fully
// recomputable from the package store at any time and never hand-edited.
type Index struct {
	byPath map[string]map[string]struct{}
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byPath: make(map[string]map[string]struct{})}
}

// Rebuild recomputes the whole index from a package snapshot.
func (ix *Index) Rebuild(packages []*modinfo.ModInfo) {
	ix.byPath = make(map[string]map[string]struct{})
	for _, m := range packages {
		ix.insert(m.ID, m.Actions)
	}
}

// Update removes a package's prior claims and inserts its new ones.
// Pass nil newActions to drop the package from the index entirely.
func (ix *Index) Update(id string, oldActions, newActions []modinfo.FileAction) {
	for _, a := range oldActions {
		if !IsClaimBearing(a.Kind) {
			continue
		}
		if set, ok := ix.byPath[a.TargetPath]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(ix.byPath, a.TargetPath)
			}
		}
	}
	ix.insert(id, newActions)
}

// Claimants returns the sorted package IDs claiming the given path.
func (ix *Index) Claimants(targetPath string) []string {
	set, ok := ix.byPath[modinfo.NormalizePath(targetPath)]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Paths returns every claimed path in ascending order.
func (ix *Index) Paths() []string {
	out := make([]string, 0, len(ix.byPath))
	for p := range ix.byPath {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct claimed paths.
func (ix *Index) Len() int {
	return len(ix.byPath)
}

func (ix *Index) insert(id string, actions []modinfo.FileAction) {
	for _, a := range actions {
		if !IsClaimBearing(a.Kind) || a.TargetPath == "" {
			continue
		}
		set, ok := ix.byPath[a.TargetPath]
		if !ok {
			set = make(map[string]struct{})
			ix.byPath[a.TargetPath] = set
		}
		set[id] = struct{}{}
	}
}
