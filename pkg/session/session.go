// Package session ties the package store, claim index, profiles, and
// deployment engine together and owns the enabled-package set, persisted
// to the state file between invocations.
package session

import (
	"context"
	"sort"

	"github.com/emmy-sama/civmod/pkg/claims"
	"github.com/emmy-sama/civmod/pkg/config"
	"github.com/emmy-sama/civmod/pkg/conflicts"
	"github.com/emmy-sama/civmod/pkg/deploy"
	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/emmy-sama/civmod/pkg/fsutil"
	"github.com/emmy-sama/civmod/pkg/logging"
	"github.com/emmy-sama/civmod/pkg/modinfo"
	"github.com/emmy-sama/civmod/pkg/profiles"
	"github.com/emmy-sama/civmod/pkg/store"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// stateFile is the on-disk shape of the persisted enabled set.
type stateFile struct {
	Enabled []string `toml:"enabled"`
}

// Options wires a session's collaborators. All fields are required.
type Options struct {
	FS        fsutil.FS
	Config    *config.Config
	Store     *store.Store
	Profiles  *profiles.Store
	Engine    *deploy.Engine
	StateFile string
}

// Session is the single owner of mutable manager state: the installed
// package set, the claim index derived from it, and the enabled set.
type Session struct {
	fs        fsutil.FS
	cfg       *config.Config
	store     *store.Store
	profiles  *profiles.Store
	engine    *deploy.Engine
	stateFile string
	index     *claims.Index
	enabled   map[string]bool
	logger    zerolog.Logger
}

// New loads the package store from disk, rebuilds the claim index, and
// restores the enabled set from the state file. Enabled IDs that no longer
// resolve to installed packages are dropped silently.
func New(opts Options) (*Session, error) {
	s := &Session{
		fs:        opts.FS,
		cfg:       opts.Config,
		store:     opts.Store,
		profiles:  opts.Profiles,
		engine:    opts.Engine,
		stateFile: opts.StateFile,
		enabled:   make(map[string]bool),
		logger:    logging.GetLogger("session"),
	}

	if err := s.store.Load(); err != nil {
		return nil, err
	}
	s.rebuildIndex()

	if err := s.loadState(); err != nil {
		return nil, err
	}
	return s, nil
}

// Packages returns all installed packages sorted by ID.
func (s *Session) Packages() []*modinfo.ModInfo { return s.store.List() }

// Get looks up an installed package by ID.
func (s *Session) Get(id string) (*modinfo.ModInfo, error) { return s.store.Get(id) }

// Enable marks an installed package as enabled and persists the change.
// Enabling an already-enabled package is a no-op.
func (s *Session) Enable(id string) error {
	if !s.store.Has(id) {
		return errors.Newf(errors.ErrNotFound, "package %q is not installed", id).
			WithDetail("package", id)
	}
	if s.enabled[id] {
		return nil
	}
	s.enabled[id] = true
	return s.saveState()
}

// Disable removes an installed package from the enabled set.
func (s *Session) Disable(id string) error {
	if !s.store.Has(id) {
		return errors.Newf(errors.ErrNotFound, "package %q is not installed", id).
			WithDetail("package", id)
	}
	if !s.enabled[id] {
		return nil
	}
	delete(s.enabled, id)
	return s.saveState()
}

// EnableAll enables every installed package.
func (s *Session) EnableAll() error {
	for _, m := range s.store.List() {
		s.enabled[m.ID] = true
	}
	return s.saveState()
}

// DisableAll empties the enabled set.
func (s *Session) DisableAll() error {
	s.enabled = make(map[string]bool)
	return s.saveState()
}

// Enabled returns the enabled package IDs, sorted.
func (s *Session) Enabled() []string {
	out := make([]string, 0, len(s.enabled))
	for id := range s.enabled {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsEnabled reports whether the package is in the enabled set.
func (s *Session) IsEnabled(id string) bool { return s.enabled[id] }

// Install adds a package from an archive and refreshes the claim index.
func (s *Session) Install(ctx context.Context, archivePath string) (*modinfo.ModInfo, error) {
	m, err := s.store.Install(ctx, archivePath)
	if err != nil {
		return nil, err
	}
	s.rebuildIndex()
	return m, nil
}

// InstallDir adds a pre-expanded package directory.
func (s *Session) InstallDir(ctx context.Context, dirPath string) (*modinfo.ModInfo, error) {
	m, err := s.store.InstallDir(ctx, dirPath)
	if err != nil {
		return nil, err
	}
	s.rebuildIndex()
	return m, nil
}

// InstallFolder installs every entry of a folder, best-effort.
func (s *Session) InstallFolder(ctx context.Context, folder string, progress func(store.ItemResult)) ([]store.ItemResult, error) {
	results, err := s.store.InstallFolder(ctx, folder, progress)
	s.rebuildIndex()
	return results, err
}

// Uninstall removes a package from the store, the enabled set, and every
// stored profile. Profiles keep their other entries.
func (s *Session) Uninstall(id string) error {
	if err := s.store.Uninstall(id); err != nil {
		return err
	}
	s.rebuildIndex()

	if s.enabled[id] {
		delete(s.enabled, id)
		if err := s.saveState(); err != nil {
			return err
		}
	}
	return s.profiles.PurgeID(id)
}

// Conflicts reports target paths claimed by two or more enabled packages.
// Conflicts are advisory; they never block deployment.
func (s *Session) Conflicts() []conflicts.Group {
	return conflicts.Detect(s.Enabled(), s.index)
}

// Claimants returns the installed packages claiming a target path.
func (s *Session) Claimants(path string) []string {
	return s.index.Claimants(path)
}

// Deploy clears the game's mod directory and copies the claim-bearing
// files of every enabled package, in ID order.
func (s *Session) Deploy(ctx context.Context, progress func(deploy.FileResult)) (*deploy.Result, error) {
	var ordered []*modinfo.ModInfo
	for _, id := range s.Enabled() {
		m, err := s.store.Get(id)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, m)
	}
	return s.engine.Deploy(ctx, ordered, progress)
}

// ClearDeployment empties the game's mod directory.
func (s *Session) ClearDeployment() error { return s.engine.Clear() }

// DeployTarget returns the directory deployments write into.
func (s *Session) DeployTarget() string { return s.engine.Target() }

// SaveProfile snapshots the current enabled set under the given name.
func (s *Session) SaveProfile(name string) error {
	return s.profiles.Save(name, s.Enabled())
}

// LoadProfile replaces the enabled set with the named profile's contents.
// IDs that are no longer installed are returned as missing, not errors.
func (s *Session) LoadProfile(name string) (applied, missing []string, err error) {
	ids, err := s.profiles.Load(name)
	if err != nil {
		return nil, nil, err
	}

	next := make(map[string]bool)
	for _, id := range ids {
		if s.store.Has(id) {
			next[id] = true
			applied = append(applied, id)
		} else {
			missing = append(missing, id)
		}
	}

	// Swap in the new set only once it is persisted, so memory and the
	// state file never diverge.
	prev := s.enabled
	s.enabled = next
	if err := s.saveState(); err != nil {
		s.enabled = prev
		return nil, nil, err
	}

	s.logger.Info().Str("profile", name).
		Int("applied", len(applied)).
		Int("missing", len(missing)).
		Msg("profile loaded")
	return applied, missing, nil
}

// DeleteProfile removes a stored profile.
func (s *Session) DeleteProfile(name string) error { return s.profiles.Delete(name) }

// Profiles lists stored profile names.
func (s *Session) Profiles() ([]string, error) { return s.profiles.List() }

// ExportProfile renders a stored profile as YAML.
func (s *Session) ExportProfile(name string) ([]byte, error) { return s.profiles.Export(name) }

// ImportProfile stores a YAML export under the given name.
func (s *Session) ImportProfile(name string, data []byte) error {
	return s.profiles.Import(name, data)
}

// MissingDependencies maps each enabled package to declared dependencies
// that are neither installed nor shipped with the game.
func (s *Session) MissingDependencies() map[string][]string {
	out := make(map[string][]string)
	for _, id := range s.Enabled() {
		m, err := s.store.Get(id)
		if err != nil {
			continue
		}
		var missing []string
		for _, dep := range m.Dependencies {
			if s.store.Has(dep) || s.cfg.IsBuiltinMod(dep) {
				continue
			}
			missing = append(missing, dep)
		}
		if len(missing) > 0 {
			out[id] = missing
		}
	}
	return out
}

func (s *Session) rebuildIndex() {
	s.index = claims.NewIndex()
	s.index.Rebuild(s.store.List())
}

func (s *Session) loadState() error {
	data, err := s.fs.ReadFile(s.stateFile)
	if err != nil {
		// First run, or the state file was removed. Start empty.
		return nil
	}

	var st stateFile
	if err := toml.Unmarshal(data, &st); err != nil {
		return errors.Wrap(err, errors.ErrMalformedMetadata, "failed to parse state file").
			WithDetail("path", s.stateFile)
	}

	for _, id := range st.Enabled {
		if s.store.Has(id) {
			s.enabled[id] = true
		}
	}
	return nil
}

func (s *Session) saveState() error {
	data, err := toml.Marshal(stateFile{Enabled: s.Enabled()})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode state file")
	}
	if err := s.fs.WriteFile(s.stateFile, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to write state file").
			WithDetail("path", s.stateFile)
	}
	return nil
}
