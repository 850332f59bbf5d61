// Package paths provides centralized path handling for civmod.
// It follows the XDG Base Directory specification and keeps every
// on-disk location the tool owns behind one API.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/emmy-sama/civmod/pkg/errors"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory for civmod
	EnvDataDir = "CIVMOD_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for civmod
	EnvConfigDir = "CIVMOD_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for civmod
	EnvStateDir = "CIVMOD_STATE_DIR"

	// EnvGameModsDir overrides the target application's mod-loading area
	EnvGameModsDir = "CIVMOD_GAME_MODS_DIR"
)

// Directory and file names under the civmod-owned roots.
// These define the on-disk layout and are not user-configurable;
// user-facing settings belong in pkg/config.
const (
	appDirName = "civmod"

	// StorageDirName holds one subdirectory per installed package, keyed by ID
	StorageDirName = "storage"

	// ProfilesDirName holds one file per saved profile
	ProfilesDirName = "profiles"

	// StagingDirName holds in-flight package installs
	StagingDirName = "staging"

	// StateFileName persists the enabled-package set between invocations
	StateFileName = "state.toml"

	// LogFileName is the append-mode log file
	LogFileName = "civmod.log"

	// ConfigFileName is the optional user configuration file
	ConfigFileName = "civmod.toml"
)

// Paths resolves every directory and file civmod reads or writes.
type Paths struct {
	dataDir     string
	configDir   string
	stateDir    string
	gameModsDir string
}

// Options overrides individual roots, mainly for tests and the config layer.
// Empty fields fall back to environment variables, then XDG defaults.
type Options struct {
	DataDir     string
	ConfigDir   string
	StateDir    string
	GameModsDir string
}

// New resolves all roots from opts, the environment, and XDG defaults.
func New(opts Options) *Paths {
	p := &Paths{
		dataDir:     firstNonEmpty(opts.DataDir, os.Getenv(EnvDataDir), filepath.Join(xdg.DataHome, appDirName)),
		configDir:   firstNonEmpty(opts.ConfigDir, os.Getenv(EnvConfigDir), filepath.Join(xdg.ConfigHome, appDirName)),
		stateDir:    firstNonEmpty(opts.StateDir, os.Getenv(EnvStateDir), filepath.Join(xdg.StateHome, appDirName)),
		gameModsDir: firstNonEmpty(opts.GameModsDir, os.Getenv(EnvGameModsDir), defaultGameModsDir()),
	}
	return p
}

// DataDir returns the root for civmod-owned persistent data.
func (p *Paths) DataDir() string { return p.dataDir }

// ConfigDir returns the directory holding the optional config file.
func (p *Paths) ConfigDir() string { return p.configDir }

// StateDir returns the directory for logs and the enabled-set state file.
func (p *Paths) StateDir() string { return p.stateDir }

// StorageDir returns the package storage root.
func (p *Paths) StorageDir() string { return filepath.Join(p.dataDir, StorageDirName) }

// ProfilesDir returns the profile storage root.
func (p *Paths) ProfilesDir() string { return filepath.Join(p.dataDir, ProfilesDirName) }

// StagingDir returns the scratch area used during package installs.
func (p *Paths) StagingDir() string { return filepath.Join(p.dataDir, StagingDirName) }

// StateFile returns the enabled-set state file path.
func (p *Paths) StateFile() string { return filepath.Join(p.stateDir, StateFileName) }

// LogFile returns the log file path.
func (p *Paths) LogFile() string { return filepath.Join(p.stateDir, LogFileName) }

// ConfigFile returns the user configuration file path.
func (p *Paths) ConfigFile() string { return filepath.Join(p.configDir, ConfigFileName) }

// GameModsDir returns the target application's mod-loading area.
// Deployment fully owns and rewrites this directory.
func (p *Paths) GameModsDir() string { return p.gameModsDir }

// SetGameModsDir replaces the resolved mod-loading area, typically from config.
func (p *Paths) SetGameModsDir(dir string) {
	if dir != "" {
		p.gameModsDir = dir
	}
}

// PackageDir returns the storage directory for an installed package ID.
func (p *Paths) PackageDir(id string) string {
	return filepath.Join(p.StorageDir(), id)
}

// ProfileFile returns the on-disk file for a profile name.
func (p *Paths) ProfileFile(name string) string {
	return filepath.Join(p.ProfilesDir(), name+".toml")
}

// EnsureAll creates every directory civmod needs.
func (p *Paths) EnsureAll() error {
	for _, dir := range []string{
		p.dataDir,
		p.configDir,
		p.stateDir,
		p.StorageDir(),
		p.ProfilesDir(),
		p.StagingDir(),
		p.gameModsDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to create directory").
				WithDetail("path", dir)
		}
	}
	return nil
}

// defaultGameModsDir points at the Civilization VII Mods directory for the
// current platform. The config layer can override it for nonstandard setups.
func defaultGameModsDir() string {
	const gameSubdir = "Firaxis Games/Sid Meier's Civilization VII/Mods"
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, filepath.FromSlash(gameSubdir))
		}
	}
	return filepath.Join(xdg.DataHome, filepath.FromSlash(gameSubdir))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
