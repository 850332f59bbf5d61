// Package profiles persists named snapshots of the enabled package set,
// one TOML file per profile under the profiles directory.
package profiles

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/emmy-sama/civmod/pkg/fsutil"
	"github.com/emmy-sama/civmod/pkg/logging"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// FileExt is the extension of profile files on disk.
const FileExt = ".toml"

// profileFile is the on-disk shape of a profile.
type profileFile struct {
	Enabled []string `toml:"enabled" yaml:"enabled"`
}

// Store reads and writes profiles under a single directory. Profile names
// map directly to file names, so they must not contain path separators.
type Store struct {
	fs     fsutil.FS
	dir    string
	logger zerolog.Logger
}

// New creates a profile store over the given directory. The directory is
// expected to exist; paths.EnsureAll creates it at startup.
func New(fs fsutil.FS, dir string) *Store {
	return &Store{
		fs:     fs,
		dir:    dir,
		logger: logging.GetLogger("profiles"),
	}
}

// Save writes the given package IDs as the named profile, overwriting any
// prior profile of that name. IDs are stored sorted and deduplicated.
func (s *Store) Save(name string, ids []string) error {
	if err := validateName(name); err != nil {
		return err
	}

	data, err := toml.Marshal(profileFile{Enabled: normalizeIDs(ids)})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode profile").
			WithDetail("profile", name)
	}
	if err := s.fs.WriteFile(s.path(name), data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to write profile").
			WithDetail("profile", name)
	}

	s.logger.Info().Str("profile", name).Int("packages", len(ids)).Msg("profile saved")
	return nil
}

// Load returns the package IDs stored in the named profile.
func (s *Store) Load(name string) ([]string, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := s.fs.ReadFile(s.path(name))
	if err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "profile %q does not exist", name).
			WithDetail("profile", name)
	}

	var pf profileFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, errors.Wrap(err, errors.ErrMalformedMetadata, "failed to parse profile").
			WithDetail("profile", name)
	}
	return normalizeIDs(pf.Enabled), nil
}

// List returns the names of all stored profiles, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to read profiles directory").
			WithDetail("path", s.dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), FileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named profile.
func (s *Store) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if _, err := s.fs.Stat(s.path(name)); err != nil {
		return errors.Newf(errors.ErrNotFound, "profile %q does not exist", name).
			WithDetail("profile", name)
	}
	if err := s.fs.Remove(s.path(name)); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to delete profile").
			WithDetail("profile", name)
	}
	s.logger.Info().Str("profile", name).Msg("profile deleted")
	return nil
}

// PurgeID removes a package ID from every stored profile. Profiles that do
// not reference the ID are left untouched.
func (s *Store) PurgeID(id string) error {
	names, err := s.List()
	if err != nil {
		return err
	}

	for _, name := range names {
		ids, err := s.Load(name)
		if err != nil {
			s.logger.Warn().Err(err).Str("profile", name).Msg("skipping unreadable profile during purge")
			continue
		}

		kept := ids[:0]
		for _, existing := range ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		if len(kept) == len(ids) {
			continue
		}
		if err := s.Save(name, kept); err != nil {
			return err
		}
	}
	return nil
}

// Export renders the named profile as YAML, for sharing outside the
// manager's own data directory.
func (s *Store) Export(name string) ([]byte, error) {
	ids, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(profileFile{Enabled: ids})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode profile export").
			WithDetail("profile", name)
	}
	return data, nil
}

// Import stores a YAML export under the given name, overwriting any
// existing profile of that name.
func (s *Store) Import(name string, data []byte) error {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return errors.Wrap(err, errors.ErrMalformedMetadata, "failed to parse profile import").
			WithDetail("profile", name)
	}
	return s.Save(name, pf.Enabled)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+FileExt)
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return errors.Newf(errors.ErrInvalidInput, "invalid profile name %q", name).
			WithDetail("profile", name)
	}
	return nil
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
