// pkg/store/store_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (archives must extract to disk)
// PURPOSE: Install/replace/uninstall semantics and batch behavior

package store_test

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/emmy-sama/civmod/pkg/fsutil"
	"github.com/emmy-sama/civmod/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(id, version string, items ...string) string {
	actions := ""
	for _, item := range items {
		actions += "<Item>" + item + "</Item>"
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<Mod id=%q version=%q>
  <Properties><Name>%s</Name></Properties>
  <ActionGroups><ActionGroup><Actions>
    <ImportFiles>%s</ImportFiles>
  </Actions></ActionGroup></ActionGroups>
</Mod>`, id, version, id, actions)
}

// writeModZip builds a zip archive holding a package with the given
// descriptor and one content file per declared item.
func writeModZip(t *testing.T, path, id, version string, items ...string) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(out)

	entry, err := w.Create(id + "/" + id + ".modinfo")
	require.NoError(t, err)
	_, err = entry.Write([]byte(descriptor(id, version, items...)))
	require.NoError(t, err)

	for _, item := range items {
		entry, err := w.Create(id + "/" + item)
		require.NoError(t, err)
		_, err = entry.Write([]byte("content of " + item + " v" + version))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	require.NoError(t, out.Close())
}

func newStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	root := t.TempDir()
	storage := filepath.Join(root, "storage")
	staging := filepath.Join(root, "staging")
	require.NoError(t, os.MkdirAll(storage, 0o755))
	require.NoError(t, os.MkdirAll(staging, 0o755))
	s := store.New(fsutil.NewOS(), storage, staging)
	require.NoError(t, s.Load())
	return s, root
}

func TestInstallFromArchive(t *testing.T) {
	s, root := newStore(t)
	archivePath := filepath.Join(root, "cool-ui.zip")
	writeModZip(t, archivePath, "cool-ui", "1.0", "ui/foo.xml")

	m, err := s.Install(context.Background(), archivePath)
	require.NoError(t, err)

	assert.Equal(t, "cool-ui", m.ID)
	assert.Equal(t, "1.0", m.Version)
	assert.FileExists(t, filepath.Join(m.InstallPath, "ui", "foo.xml"))
	assert.True(t, s.Has("cool-ui"))
	assert.Equal(t, 1, s.Len())
}

func TestInstallSameIDReplaces(t *testing.T) {
	s, root := newStore(t)
	first := filepath.Join(root, "first.zip")
	second := filepath.Join(root, "second.zip")
	writeModZip(t, first, "cool-ui", "1.0", "ui/foo.xml")
	writeModZip(t, second, "cool-ui", "2.0", "ui/bar.xml")

	_, err := s.Install(context.Background(), first)
	require.NoError(t, err)
	m, err := s.Install(context.Background(), second)
	require.NoError(t, err)

	// Exactly one package with that ID, matching the second archive.
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "2.0", m.Version)
	assert.FileExists(t, filepath.Join(m.InstallPath, "ui", "bar.xml"))
	assert.NoFileExists(t, filepath.Join(m.InstallPath, "ui", "foo.xml"))
}

func TestInstallCorruptArchiveCleansUp(t *testing.T) {
	s, root := newStore(t)
	archivePath := filepath.Join(root, "broken.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("not a zip"), 0o644))

	_, err := s.Install(context.Background(), archivePath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCorruptArchive))
	assert.Zero(t, s.Len())

	// Staging must not accumulate half-extracted content.
	entries, err := os.ReadDir(filepath.Join(root, "staging"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInstallNoDescriptor(t *testing.T) {
	s, root := newStore(t)
	archivePath := filepath.Join(root, "plain.zip")

	out, err := os.Create(archivePath)
	require.NoError(t, err)
	w := zip.NewWriter(out)
	entry, err := w.Create("readme.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("no descriptor here"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())

	_, err = s.Install(context.Background(), archivePath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDescriptorNotFound))
}

func TestInstallMissingActionSource(t *testing.T) {
	s, root := newStore(t)
	archivePath := filepath.Join(root, "bad.zip")

	out, err := os.Create(archivePath)
	require.NoError(t, err)
	w := zip.NewWriter(out)
	entry, err := w.Create("bad/bad.modinfo")
	require.NoError(t, err)
	_, err = entry.Write([]byte(descriptor("bad", "1.0", "ui/missing.xml")))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())

	_, err = s.Install(context.Background(), archivePath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMalformedMetadata))
	assert.Zero(t, s.Len())
}

func TestInstallUnsupportedFormat(t *testing.T) {
	s, root := newStore(t)
	archivePath := filepath.Join(root, "mod.tar.gz")
	require.NoError(t, os.WriteFile(archivePath, []byte("x"), 0o644))

	_, err := s.Install(context.Background(), archivePath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnsupportedFormat))
}

func TestInstallDir(t *testing.T) {
	s, root := newStore(t)
	src := filepath.Join(root, "expanded", "nice-mod")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "ui"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nice-mod.modinfo"),
		[]byte(descriptor("nice-mod", "1.0", "ui/a.xml")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "ui", "a.xml"), []byte("<a/>"), 0o644))

	m, err := s.InstallDir(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "nice-mod", m.ID)
	// Source directory stays in place.
	assert.FileExists(t, filepath.Join(src, "nice-mod.modinfo"))
}

func TestInstallFolderBestEffort(t *testing.T) {
	s, root := newStore(t)
	folder := filepath.Join(root, "batch")
	require.NoError(t, os.MkdirAll(folder, 0o755))

	writeModZip(t, filepath.Join(folder, "a.zip"), "mod-a", "1.0", "ui/a.xml")
	require.NoError(t, os.WriteFile(filepath.Join(folder, "b.zip"), []byte("corrupt"), 0o644))
	writeModZip(t, filepath.Join(folder, "c.zip"), "mod-c", "1.0", "ui/c.xml")

	var seen int
	results, err := s.InstallFolder(context.Background(), folder, func(store.ItemResult) { seen++ })
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 3, seen)

	var failures int
	for _, r := range results {
		if r.Err != nil {
			failures++
			assert.True(t, errors.IsCode(r.Err, errors.ErrCorruptArchive))
		}
	}
	assert.Equal(t, 1, failures)
	assert.True(t, s.Has("mod-a"))
	assert.True(t, s.Has("mod-c"))
	assert.Equal(t, 2, s.Len())
}

func TestInstallFolderCancellation(t *testing.T) {
	s, root := newStore(t)
	folder := filepath.Join(root, "batch")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	writeModZip(t, filepath.Join(folder, "a.zip"), "mod-a", "1.0", "ui/a.xml")
	writeModZip(t, filepath.Join(folder, "b.zip"), "mod-b", "1.0", "ui/b.xml")

	ctx, cancel := context.WithCancel(context.Background())
	results, err := s.InstallFolder(ctx, folder, func(store.ItemResult) { cancel() })
	require.ErrorIs(t, err, context.Canceled)
	// First item completes; the rest are never started.
	assert.Len(t, results, 1)
}

func TestUninstall(t *testing.T) {
	s, root := newStore(t)
	archivePath := filepath.Join(root, "cool-ui.zip")
	writeModZip(t, archivePath, "cool-ui", "1.0", "ui/foo.xml")

	m, err := s.Install(context.Background(), archivePath)
	require.NoError(t, err)

	require.NoError(t, s.Uninstall("cool-ui"))
	assert.False(t, s.Has("cool-ui"))
	assert.NoDirExists(t, m.InstallPath)

	err = s.Uninstall("cool-ui")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestGetNotFound(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Get("nope")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestLoadRescansDisk(t *testing.T) {
	s, root := newStore(t)
	archivePath := filepath.Join(root, "cool-ui.zip")
	writeModZip(t, archivePath, "cool-ui", "1.0", "ui/foo.xml")
	_, err := s.Install(context.Background(), archivePath)
	require.NoError(t, err)

	// A fresh store over the same root sees the installed package.
	fresh := store.New(fsutil.NewOS(), filepath.Join(root, "storage"), filepath.Join(root, "staging"))
	require.NoError(t, fresh.Load())
	assert.True(t, fresh.Has("cool-ui"))

	list := fresh.List()
	require.Len(t, list, 1)
	assert.Equal(t, "cool-ui", list[0].ID)
}
