// pkg/modinfo/modinfo_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None (pure parsing)
// PURPOSE: Descriptor parsing, normalization, and round-trip stability

package modinfo_test

import (
	"path/filepath"
	"testing"

	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/emmy-sama/civmod/pkg/fsutil"
	"github.com/emmy-sama/civmod/pkg/modinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDescriptor = `<?xml version="1.0" encoding="utf-8"?>
<Mod id="cool-ui" version="1.2">
  <Properties>
    <Name>Cool UI</Name>
    <Description>A nicer interface.</Description>
    <Authors>Ada, Grace</Authors>
    <AffectsSavedGames>0</AffectsSavedGames>
    <CustomProperty>kept-as-is</CustomProperty>
  </Properties>
  <Dependencies>
    <Mod id="base-standard" title="Base Game"/>
    <Mod id="other-mod"/>
  </Dependencies>
  <ActionGroups>
    <ActionGroup id="main" scope="game">
      <Actions>
        <ImportFiles>
          <Item>ui/Foo.xml</Item>
          <Item>art/icon.png</Item>
        </ImportFiles>
        <UIScripts>
          <Item>scripts/bar.js</Item>
        </UIScripts>
        <UpdateDatabase>
          <Item>data/tables.sql</Item>
        </UpdateDatabase>
        <FancyNewAction>
          <Item>misc/thing.bin</Item>
        </FancyNewAction>
      </Actions>
    </ActionGroup>
  </ActionGroups>
</Mod>`

func TestParseFullDescriptor(t *testing.T) {
	m, err := modinfo.Parse([]byte(fullDescriptor))
	require.NoError(t, err)

	assert.Equal(t, "cool-ui", m.ID)
	assert.Equal(t, "Cool UI", m.DisplayName)
	assert.Equal(t, "1.2", m.Version)
	assert.Equal(t, []string{"Ada", "Grace"}, m.Authors)
	assert.Equal(t, []string{"base-standard", "other-mod"}, m.Dependencies)
	assert.Equal(t, modinfo.SaveCompatible, m.SaveCompat)

	require.Len(t, m.Actions, 5)
	assert.Equal(t, modinfo.FileAction{
		Kind:       modinfo.ActionImportFiles,
		TargetPath: "ui/foo.xml",
		TargetRel:  "ui/Foo.xml",
		SourceRel:  "ui/Foo.xml",
	}, m.Actions[0])
	// Unknown action kinds are recorded under their tag.
	assert.Equal(t, modinfo.ActionKind("FancyNewAction"), m.Actions[4].Kind)
}

func TestParseSaveCompatTriState(t *testing.T) {
	tests := []struct {
		name     string
		affects  string
		expected modinfo.SaveCompat
	}{
		{"declared not affecting", "<AffectsSavedGames>0</AffectsSavedGames>", modinfo.SaveCompatible},
		{"declared affecting", "<AffectsSavedGames>1</AffectsSavedGames>", modinfo.SaveIncompatible},
		{"not declared", "", modinfo.SaveCompatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `<Mod id="x" version="1"><Properties><Name>X</Name>` + tt.affects + `</Properties></Mod>`
			m, err := modinfo.Parse([]byte(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.SaveCompat)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not xml", "not xml at all <"},
		{"no Mod root", `<Other id="x" version="1"/>`},
		{"missing id", `<Mod version="1"><Properties><Name>X</Name></Properties></Mod>`},
		{"missing version", `<Mod id="x"><Properties><Name>X</Name></Properties></Mod>`},
		{"missing Properties", `<Mod id="x" version="1"/>`},
		{"missing Name", `<Mod id="x" version="1"><Properties/></Mod>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := modinfo.Parse([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrMalformedMetadata), "got %v", err)
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	a, err := modinfo.Parse([]byte(fullDescriptor))
	require.NoError(t, err)
	b, err := modinfo.Parse([]byte(fullDescriptor))
	require.NoError(t, err)

	assertSameRecord(t, a, b)
}

func TestRoundTripStability(t *testing.T) {
	first, err := modinfo.Parse([]byte(fullDescriptor))
	require.NoError(t, err)

	out, err := first.Serialize()
	require.NoError(t, err)
	// Pass-through fields the record does not model survive.
	assert.Contains(t, string(out), "CustomProperty")
	assert.Contains(t, string(out), "kept-as-is")

	second, err := modinfo.Parse(out)
	require.NoError(t, err)
	assertSameRecord(t, first, second)
}

func TestParseCollapsesDuplicateActions(t *testing.T) {
	raw := `<Mod id="x" version="1">
  <Properties><Name>X</Name></Properties>
  <ActionGroups>
    <ActionGroup><Actions>
      <ImportFiles><Item>ui/foo.xml</Item><Item>UI/FOO.XML</Item></ImportFiles>
    </Actions></ActionGroup>
    <ActionGroup><Actions>
      <ImportFiles><Item>ui/foo.xml</Item></ImportFiles>
      <UIScripts><Item>ui/foo.xml</Item></UIScripts>
    </Actions></ActionGroup>
  </ActionGroups>
</Mod>`
	m, err := modinfo.Parse([]byte(raw))
	require.NoError(t, err)

	// One ImportFiles claim (case-insensitive duplicates collapse), plus the
	// same path under a different kind.
	require.Len(t, m.Actions, 2)
	assert.Equal(t, modinfo.ActionImportFiles, m.Actions[0].Kind)
	assert.Equal(t, "ui/foo.xml", m.Actions[0].TargetPath)
	// The first occurrence's declared casing is the one kept.
	assert.Equal(t, "ui/foo.xml", m.Actions[0].TargetRel)
	assert.Equal(t, modinfo.ActionUIScripts, m.Actions[1].Kind)
}

func TestParsePreservesDeclaredTargetCase(t *testing.T) {
	raw := `<Mod id="x" version="1">
  <Properties><Name>X</Name></Properties>
  <ActionGroups><ActionGroup><Actions>
    <ImportFiles><Item>UI\Panels\Main.js</Item></ImportFiles>
  </Actions></ActionGroup></ActionGroups>
</Mod>`
	m, err := modinfo.Parse([]byte(raw))
	require.NoError(t, err)

	require.Len(t, m.Actions, 1)
	assert.Equal(t, "ui/panels/main.js", m.Actions[0].TargetPath)
	assert.Equal(t, "UI/Panels/Main.js", m.Actions[0].TargetRel)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`UI\Panels\Foo.xml`, "ui/panels/foo.xml"},
		{"/ui/foo.xml", "ui/foo.xml"},
		{"./ui/foo.xml", "ui/foo.xml"},
		{"ui//foo.xml ", "ui/foo.xml"},
		{"", ""},
		{".", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, modinfo.NormalizePath(tt.in), "input %q", tt.in)
	}
}

func TestActionsOfKind(t *testing.T) {
	m, err := modinfo.Parse([]byte(fullDescriptor))
	require.NoError(t, err)

	imports := m.ActionsOfKind(modinfo.ActionImportFiles)
	require.Len(t, imports, 2)
	assert.Equal(t, "art/icon.png", imports[1].TargetPath)
	assert.Empty(t, m.ActionsOfKind(modinfo.ActionUpdateText))
}

func TestResolveDisplayName(t *testing.T) {
	raw := `<Mod id="loc-mod" version="1">
  <Properties><Name>LOC_MOD_NAME</Name></Properties>
  <LocalizedText>
    <File>text/en_us/names.xml</File>
  </LocalizedText>
</Mod>`
	locFile := `<Database><EnglishText>
  <Row Tag="LOC_MOD_NAME"><Text>Localized Mod</Text></Row>
</EnglishText></Database>`

	fs := fsutil.NewMem()
	installPath := "/storage/loc-mod"
	locPath := filepath.Join(installPath, "text", "en_us", "names.xml")
	require.NoError(t, fs.MkdirAll(filepath.Dir(locPath), 0o755))
	require.NoError(t, fs.WriteFile(locPath, []byte(locFile), 0o644))

	m, err := modinfo.Parse([]byte(raw))
	require.NoError(t, err)
	m.InstallPath = installPath

	m.ResolveDisplayName(fs)
	assert.Equal(t, "Localized Mod", m.DisplayName)
}

func TestResolveDisplayNameFallsBackToID(t *testing.T) {
	raw := `<Mod id="loc-mod" version="1">
  <Properties><Name>LOC_MISSING</Name></Properties>
</Mod>`
	m, err := modinfo.Parse([]byte(raw))
	require.NoError(t, err)
	m.InstallPath = "/storage/loc-mod"

	m.ResolveDisplayName(fsutil.NewMem())
	assert.Equal(t, "loc-mod", m.DisplayName)
}

// assertSameRecord compares the modeled fields of two parsed records.
func assertSameRecord(t *testing.T, a, b *modinfo.ModInfo) {
	t.Helper()
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.DisplayName, b.DisplayName)
	assert.Equal(t, a.Version, b.Version)
	assert.Equal(t, a.Authors, b.Authors)
	assert.Equal(t, a.Dependencies, b.Dependencies)
	assert.Equal(t, a.SaveCompat, b.SaveCompat)
	assert.Equal(t, a.Actions, b.Actions)
}
