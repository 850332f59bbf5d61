// Package store manages the set of installed packages on disk: one
// subdirectory per package ID under the storage root, enumerable and
// re-derivable from disk at any time.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/emmy-sama/civmod/pkg/archive"
	"github.com/emmy-sama/civmod/pkg/claims"
	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/emmy-sama/civmod/pkg/fsutil"
	"github.com/emmy-sama/civmod/pkg/logging"
	"github.com/emmy-sama/civmod/pkg/modinfo"
	"github.com/rs/zerolog"
)

// DescriptorExt is the file extension of package descriptors.
const DescriptorExt = ".modinfo"

// Store is the set of installed packages. Single-owner, single-writer:
// one Store instance per running session.
type Store struct {
	fs      fsutil.FS
	root    string
	staging string
	byID    map[string]*modinfo.ModInfo
	logger  zerolog.Logger
}

// New creates a store over the given storage root and staging area.
// Call Load to populate it from disk.
func New(fs fsutil.FS, root, staging string) *Store {
	return &Store{
		fs:      fs,
		root:    root,
		staging: staging,
		byID:    make(map[string]*modinfo.ModInfo),
		logger:  logging.GetLogger("store"),
	}
}

// Load rescans the storage root and rebuilds the in-memory package set.
// Directories without a parsable descriptor are logged and skipped; they
// never abort the scan.
func (s *Store) Load() error {
	s.byID = make(map[string]*modinfo.ModInfo)

	entries, err := s.fs.ReadDir(s.root)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to read storage root").
			WithDetail("path", s.root)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(s.root, entry.Name())
		m, err := s.readPackage(dir)
		if err != nil {
			s.logger.Warn().Err(err).Str("dir", dir).Msg("skipping unreadable package directory")
			continue
		}
		s.byID[m.ID] = m
	}

	s.logger.Debug().Int("packages", len(s.byID)).Msg("storage root loaded")
	return nil
}

// List returns all installed packages sorted by ID.
func (s *Store) List() []*modinfo.ModInfo {
	out := make([]*modinfo.ModInfo, 0, len(s.byID))
	for _, m := range s.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get looks up an installed package by ID.
func (s *Store) Get(id string) (*modinfo.ModInfo, error) {
	m, ok := s.byID[id]
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "package %q is not installed", id).
			WithDetail("package", id)
	}
	return m, nil
}

// Has reports whether the given package ID is installed.
func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of installed packages.
func (s *Store) Len() int { return len(s.byID) }

// Install expands the archive into the store and registers the parsed
// package, replacing any prior package with the same ID. Installation is
// all-or-nothing per package: on any failure the staging area is removed
// and the prior install, if any, stays untouched.
func (s *Store) Install(ctx context.Context, archivePath string) (*modinfo.ModInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	staging, err := s.newStagingDir()
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.fs.RemoveAll(staging) }()

	if err := archive.Extract(archivePath, staging); err != nil {
		return nil, err
	}

	m, modRoot, err := s.readStaged(staging)
	if err != nil {
		return nil, err
	}
	return s.commit(m, modRoot)
}

// InstallDir registers a pre-expanded package directory, copying its
// content into the store. The source directory is left untouched.
func (s *Store) InstallDir(ctx context.Context, dirPath string) (*modinfo.ModInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	staging, err := s.newStagingDir()
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.fs.RemoveAll(staging) }()

	if err := copyTree(s.fs, dirPath, staging); err != nil {
		return nil, err
	}

	m, modRoot, err := s.readStaged(staging)
	if err != nil {
		return nil, err
	}
	return s.commit(m, modRoot)
}

// ItemResult is the outcome of one entry in a batch install.
type ItemResult struct {
	// Source is the folder entry the result refers to.
	Source string

	// Package is set on success.
	Package *modinfo.ModInfo

	// Err is set on failure; other entries proceed regardless.
	Err error
}

// InstallFolder installs each immediate entry of the folder independently:
// subdirectories as pre-expanded packages, recognized archives through the
// extraction pipeline. One failure never aborts the rest. The optional
// progress callback fires after each item; cancellation is honored between
// items, never mid-item.
func (s *Store) InstallFolder(ctx context.Context, folder string, progress func(ItemResult)) ([]ItemResult, error) {
	entries, err := s.fs.ReadDir(folder)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to read folder").
			WithDetail("path", folder)
	}

	var results []ItemResult
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		source := filepath.Join(folder, entry.Name())
		var item ItemResult
		switch {
		case entry.IsDir():
			pkg, err := s.InstallDir(ctx, source)
			item = ItemResult{Source: source, Package: pkg, Err: err}
		case archive.Supported(source):
			pkg, err := s.Install(ctx, source)
			item = ItemResult{Source: source, Package: pkg, Err: err}
		default:
			item = ItemResult{
				Source: source,
				Err: errors.Newf(errors.ErrUnsupportedFormat, "not an archive or package directory").
					WithDetail("path", source),
			}
		}

		results = append(results, item)
		if progress != nil {
			progress(item)
		}
	}
	return results, nil
}

// Uninstall removes the package's directory and store entry. It does not
// touch profiles or the enabled set; the session owns that cleanup.
func (s *Store) Uninstall(id string) error {
	m, ok := s.byID[id]
	if !ok {
		return errors.Newf(errors.ErrNotFound, "package %q is not installed", id).
			WithDetail("package", id)
	}
	if err := s.fs.RemoveAll(m.InstallPath); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to remove package directory").
			WithDetail("package", id).
			WithDetail("path", m.InstallPath)
	}
	delete(s.byID, id)
	s.logger.Info().Str("package", id).Msg("package uninstalled")
	return nil
}

// readStaged locates and parses the descriptor within a staging directory
// and validates that every claim-bearing action has a source file.
func (s *Store) readStaged(staging string) (*modinfo.ModInfo, string, error) {
	descriptor, err := findDescriptor(s.fs, staging)
	if err != nil {
		return nil, "", err
	}

	raw, err := s.fs.ReadFile(descriptor)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.ErrIOFailure, "failed to read descriptor").
			WithDetail("path", descriptor)
	}

	m, err := modinfo.Parse(raw)
	if err != nil {
		return nil, "", err
	}

	modRoot := filepath.Dir(descriptor)
	for _, a := range claims.ClaimedActions(m) {
		source := filepath.Join(modRoot, filepath.FromSlash(a.SourceRel))
		if _, err := s.fs.Stat(source); err != nil {
			return nil, "", errors.Newf(errors.ErrMalformedMetadata,
				"action %s references missing source file %q", a.Kind, a.SourceRel).
				WithDetail("package", m.ID)
		}
	}
	return m, modRoot, nil
}

// commit moves a validated package root into the store, replacing any
// prior install of the same ID only after the new content is in place.
func (s *Store) commit(m *modinfo.ModInfo, modRoot string) (*modinfo.ModInfo, error) {
	final := filepath.Join(s.root, m.ID)
	incoming := final + ".new"
	backup := final + ".old"

	_ = s.fs.RemoveAll(incoming)
	if err := s.fs.Rename(modRoot, incoming); err != nil {
		// Rename can fail across devices; fall back to copying.
		if err := copyTree(s.fs, modRoot, incoming); err != nil {
			return nil, err
		}
	}

	_, statErr := s.fs.Stat(final)
	replaced := statErr == nil
	if replaced {
		if err := s.fs.Rename(final, backup); err != nil {
			_ = s.fs.RemoveAll(incoming)
			return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to set aside prior install").
				WithDetail("package", m.ID)
		}
	}

	if err := s.fs.Rename(incoming, final); err != nil {
		if replaced {
			_ = s.fs.Rename(backup, final)
		}
		_ = s.fs.RemoveAll(incoming)
		return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to move package into store").
			WithDetail("package", m.ID)
	}
	if replaced {
		_ = s.fs.RemoveAll(backup)
	}

	m.InstallPath = final
	m.ResolveDisplayName(s.fs)
	s.byID[m.ID] = m

	s.logger.Info().Str("package", m.ID).Str("version", m.Version).Msg("package installed")
	return m, nil
}

// readPackage parses the descriptor of an already-installed directory.
func (s *Store) readPackage(dir string) (*modinfo.ModInfo, error) {
	descriptor, err := findDescriptor(s.fs, dir)
	if err != nil {
		return nil, err
	}
	raw, err := s.fs.ReadFile(descriptor)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to read descriptor").
			WithDetail("path", descriptor)
	}
	m, err := modinfo.Parse(raw)
	if err != nil {
		return nil, err
	}
	m.InstallPath = filepath.Dir(descriptor)
	m.ResolveDisplayName(s.fs)
	return m, nil
}

func (s *Store) newStagingDir() (string, error) {
	dir := filepath.Join(s.staging, fmt.Sprintf("install-%d", time.Now().UnixNano()))
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrIOFailure, "failed to create staging directory").
			WithDetail("path", dir)
	}
	return dir, nil
}

// findDescriptor returns the .modinfo file closest to root, breaking depth
// ties lexicographically so the choice is deterministic.
func findDescriptor(fs fsutil.FS, root string) (string, error) {
	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := fs.ReadDir(dir)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrIOFailure, "failed to scan package content").
				WithDetail("path", dir)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		var subdirs []string
		for _, entry := range entries {
			name := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				subdirs = append(subdirs, name)
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), DescriptorExt) {
				return name, nil
			}
		}
		queue = append(queue, subdirs...)
	}
	return "", errors.New(errors.ErrDescriptorNotFound, "no package descriptor found").
		WithDetail("path", root)
}

// copyTree copies src's contents into dst recursively.
func copyTree(fs fsutil.FS, src, dst string) error {
	entries, err := fs.ReadDir(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to read directory").
			WithDetail("path", src)
	}
	if err := fs.MkdirAll(dst, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to create directory").
			WithDetail("path", dst)
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyTree(fs, from, to); err != nil {
				return err
			}
			continue
		}
		data, err := fs.ReadFile(from)
		if err != nil {
			return errors.Wrap(err, errors.ErrIOFailure, "failed to read file").
				WithDetail("path", from)
		}
		if err := fs.WriteFile(to, data, 0o644); err != nil {
			return errors.Wrap(err, errors.ErrIOFailure, "failed to write file").
				WithDetail("path", to)
		}
	}
	return nil
}
