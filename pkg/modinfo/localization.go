package modinfo

import (
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/emmy-sama/civmod/pkg/fsutil"
	"github.com/emmy-sama/civmod/pkg/logging"
)

// ResolveDisplayName replaces a LOC_-keyed display name with the English
// text from the package's LocalizedText files. Needs InstallPath to be set,
// so it runs after extraction, not during Parse. When no translation is
// found the mod ID stands in for the name.
func (m *ModInfo) ResolveDisplayName(fs fsutil.FS) {
	if !strings.HasPrefix(m.DisplayName, "LOC_") || m.doc == nil || m.InstallPath == "" {
		return
	}
	logger := logging.GetLogger("modinfo")

	key := m.DisplayName
	for _, fileElem := range m.doc.FindElements("//LocalizedText/File") {
		rel := strings.TrimSpace(fileElem.Text())
		if rel == "" || !strings.Contains(strings.ToLower(rel), "en_us") {
			continue
		}
		locPath := filepath.Join(m.InstallPath, filepath.FromSlash(rel))
		if text, ok := lookupLocalizedText(fs, locPath, key); ok {
			m.DisplayName = text
			return
		}
		logger.Debug().Str("mod", m.ID).Str("file", rel).Str("key", key).
			Msg("localization file has no entry for name key")
	}

	m.DisplayName = m.ID
}

func lookupLocalizedText(fs fsutil.FS, locPath, key string) (string, bool) {
	raw, err := fs.ReadFile(locPath)
	if err != nil {
		return "", false
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return "", false
	}
	for _, row := range doc.FindElements("//EnglishText/Row") {
		if row.SelectAttrValue("Tag", "") != key {
			continue
		}
		if textElem := row.SelectElement("Text"); textElem != nil {
			if text := strings.TrimSpace(textElem.Text()); text != "" {
				return text, true
			}
		}
	}
	return "", false
}
