package modinfo

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/emmy-sama/civmod/pkg/errors"
)

// Parse turns raw descriptor text into a ModInfo. It is pure and
// deterministic: identical input always yields an identical record.
//
// It fails with MALFORMED_METADATA when the XML does not parse, the Mod
// root or its id/version attributes are missing, or Properties carries no
// Name element. Unknown elements and attributes are retained on the record
// and survive Serialize unchanged.
func Parse(raw []byte) (*ModInfo, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrMalformedMetadata, "descriptor is not well-formed XML")
	}

	root := doc.SelectElement("Mod")
	if root == nil {
		return nil, errors.New(errors.ErrMalformedMetadata, "no Mod element found")
	}

	id := strings.TrimSpace(root.SelectAttrValue("id", ""))
	if id == "" {
		return nil, errors.New(errors.ErrMalformedMetadata, "Mod element has no id attribute")
	}

	version := strings.TrimSpace(root.SelectAttrValue("version", ""))
	if version == "" {
		return nil, errors.Newf(errors.ErrMalformedMetadata, "mod %q has no version attribute", id)
	}

	props := root.SelectElement("Properties")
	if props == nil {
		return nil, errors.Newf(errors.ErrMalformedMetadata, "mod %q has no Properties element", id)
	}

	nameElem := props.SelectElement("Name")
	if nameElem == nil {
		return nil, errors.Newf(errors.ErrMalformedMetadata, "mod %q has no Name element", id)
	}
	name := strings.TrimSpace(nameElem.Text())

	m := &ModInfo{
		ID:          id,
		DisplayName: name,
		Version:     version,
		Authors:     parseAuthors(props),
		SaveCompat:  parseSaveCompat(props),
		doc:         doc,
	}

	m.Dependencies = parseDependencies(root)
	m.Actions = parseActions(root)

	return m, nil
}

// Serialize re-emits the descriptor from the retained document, so fields
// the record does not model pass through losslessly.
func (m *ModInfo) Serialize() ([]byte, error) {
	if m.doc == nil {
		return nil, errors.Newf(errors.ErrInternal, "mod %q was not produced by Parse", m.ID)
	}
	out, err := m.doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to serialize descriptor for %q", m.ID)
	}
	return out, nil
}

func parseAuthors(props *etree.Element) []string {
	elem := props.SelectElement("Authors")
	if elem == nil {
		return nil
	}
	var authors []string
	for _, part := range strings.Split(elem.Text(), ",") {
		if a := strings.TrimSpace(part); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

func parseSaveCompat(props *etree.Element) SaveCompat {
	elem := props.SelectElement("AffectsSavedGames")
	if elem == nil {
		return SaveCompatUnknown
	}
	if strings.TrimSpace(elem.Text()) == "0" {
		return SaveCompatible
	}
	return SaveIncompatible
}

// parseDependencies collects dependency Mod ids declared anywhere under the
// root. Descriptors in the wild put the Dependencies block under the Mod
// root or under Properties.
func parseDependencies(root *etree.Element) []string {
	seen := make(map[string]struct{})
	var deps []string
	for _, el := range root.FindElements(".//Dependencies/Mod") {
		depID := strings.TrimSpace(el.SelectAttrValue("id", ""))
		if depID == "" {
			continue
		}
		if _, ok := seen[depID]; ok {
			continue
		}
		seen[depID] = struct{}{}
		deps = append(deps, depID)
	}
	return deps
}

// parseActions collects every Item under every ActionGroup's Actions
// element, keyed by the action element's tag. Exact duplicates of the same
// kind and normalized target collapse to the first occurrence.
func parseActions(root *etree.Element) []FileAction {
	type actionKey struct {
		kind   ActionKind
		target string
	}
	seen := make(map[actionKey]struct{})
	var actions []FileAction

	for _, group := range root.FindElements(".//ActionGroup") {
		actionsElem := group.SelectElement("Actions")
		if actionsElem == nil {
			continue
		}
		for _, actionElem := range actionsElem.ChildElements() {
			kind := ActionKind(actionElem.Tag)
			for _, item := range actionElem.SelectElements("Item") {
				raw := strings.TrimSpace(item.Text())
				if raw == "" {
					continue
				}
				target := NormalizePath(raw)
				key := actionKey{kind: kind, target: target}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				actions = append(actions, FileAction{
					Kind:       kind,
					TargetPath: target,
					TargetRel:  CleanPath(raw),
					SourceRel:  raw,
				})
			}
		}
	}
	return actions
}
