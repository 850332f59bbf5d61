// pkg/archive/archive_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (zip fixtures built in-test)
// PURPOSE: Extraction dispatch, entry listing, corruption and traversal handling

package archive_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/emmy-sama/civmod/pkg/archive"
	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeZip builds a zip archive at path from name -> content pairs.
// Names ending in "/" become directory entries.
func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(out)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())
}

func TestSupported(t *testing.T) {
	assert.True(t, archive.Supported("mod.zip"))
	assert.True(t, archive.Supported("mod.7z"))
	assert.True(t, archive.Supported("MOD.RAR"))
	assert.True(t, archive.Supported("mod.r00"))
	assert.False(t, archive.Supported("mod.tar.gz"))
	assert.False(t, archive.Supported("mod"))
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "mod.zip")
	writeZip(t, archivePath, map[string]string{
		"cool-ui/cool-ui.modinfo": "<Mod/>",
		"cool-ui/ui/foo.xml":      "<Panel/>",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, archive.Extract(archivePath, dest))

	data, err := os.ReadFile(filepath.Join(dest, "cool-ui", "ui", "foo.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<Panel/>", string(data))
}

func TestExtractUnsupportedFormat(t *testing.T) {
	err := archive.Extract("mod.tar.gz", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnsupportedFormat))
}

func TestExtractCorruptZip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("this is not a zip"), 0o644))

	err := archive.Extract(archivePath, dir)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCorruptArchive))
}

func TestExtractRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")
	writeZip(t, archivePath, map[string]string{
		"../escape.txt": "gotcha",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	err := archive.Extract(archivePath, dest)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCorruptArchive))
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestListEntries(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "mod.zip")
	writeZip(t, archivePath, map[string]string{
		"a.modinfo": "<Mod/>",
		"ui/b.xml":  "<Panel/>",
	})

	entries, err := archive.ListEntries(archivePath)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.modinfo", "ui/b.xml"}, entries)
}

func TestListEntriesUnsupported(t *testing.T) {
	_, err := archive.ListEntries("mod.tar")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnsupportedFormat))
}
