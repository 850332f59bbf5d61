// Package modinfo parses Civilization VII .modinfo descriptors into typed
// records and re-serializes them without losing fields it does not model.
package modinfo

import (
	"path"
	"strings"

	"github.com/beevik/etree"
)

// ActionKind tags a declared file-affecting action. The set is open: any
// action element found in a descriptor is recorded under its tag name, so
// kinds beyond the ones named here survive a parse/serialize round trip.
type ActionKind string

// Action kinds the target application is known to use.
const (
	ActionImportFiles    ActionKind = "ImportFiles"
	ActionUIScripts      ActionKind = "UIScripts"
	ActionUpdateDatabase ActionKind = "UpdateDatabase"
	ActionUpdateText     ActionKind = "UpdateText"
)

// SaveCompat is the declared save-game compatibility of a package.
type SaveCompat int

const (
	// SaveCompatUnknown means the descriptor did not declare compatibility.
	SaveCompatUnknown SaveCompat = iota
	// SaveCompatible means the package declares it does not affect saves.
	SaveCompatible
	// SaveIncompatible means the package declares it affects saves.
	SaveIncompatible
)

func (s SaveCompat) String() string {
	switch s {
	case SaveCompatible:
		return "compatible"
	case SaveIncompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// FileAction is a declared effect a package has on one target file.
type FileAction struct {
	// Kind is the action element tag from the descriptor.
	Kind ActionKind

	// TargetPath is the normalized path within the target application's
	// logical file space. Normalized paths compare case-insensitively.
	TargetPath string

	// TargetRel is the declared target path with its original casing,
	// cleaned. Deployment writes this path; TargetPath is the comparison
	// key. Case-sensitive target filesystems see the declared name.
	TargetRel string

	// SourceRel is the path as declared, relative to the package content.
	SourceRel string
}

// ModInfo is the parsed descriptor of one package.
type ModInfo struct {
	ID          string
	DisplayName string
	Version     string
	Authors     []string

	// Dependencies holds declared dependency IDs in declaration order.
	// They may reference packages that are not installed; that is a
	// reportable state, not an error.
	Dependencies []string

	SaveCompat SaveCompat

	// Actions holds every declared action in descriptor order, with exact
	// duplicates of the same kind and target collapsed.
	Actions []FileAction

	// InstallPath is the on-disk directory holding the expanded content.
	// Set by the package store, empty straight out of Parse.
	InstallPath string

	// doc retains the full descriptor so Serialize re-emits fields this
	// type does not model.
	doc *etree.Document
}

// CleanPath canonicalizes a declared path without folding case:
// slash-separated, cleaned, no leading slash.
func CleanPath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// NormalizePath canonicalizes a declared path for claim comparison:
// CleanPath plus case folding.
func NormalizePath(p string) string {
	return strings.ToLower(CleanPath(p))
}

// ActionsOfKind returns the package's actions of the given kind, in order.
func (m *ModInfo) ActionsOfKind(kind ActionKind) []FileAction {
	var out []FileAction
	for _, a := range m.Actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// HasDependency reports whether the package declares a dependency on id.
func (m *ModInfo) HasDependency(id string) bool {
	for _, d := range m.Dependencies {
		if d == id {
			return true
		}
	}
	return false
}
