// Package config loads civmod configuration in layers: embedded defaults,
// then the optional user config file, then CIVMOD_* environment variables.
//
// Environment variables use "__" as the section separator,
// e.g. CIVMOD_PATHS__GAME_MODS_DIR maps to paths.game_mods_dir.
package config

import (
	_ "embed"
	"os"
	"strings"

	"github.com/emmy-sama/civmod/pkg/errors"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "CIVMOD_"

// Config is the resolved civmod configuration.
type Config struct {
	Paths  PathsConfig  `koanf:"paths"`
	Deploy DeployConfig `koanf:"deploy"`
	Game   GameConfig   `koanf:"game"`
}

// PathsConfig overrides resolved locations. Empty values keep the
// platform defaults from pkg/paths.
type PathsConfig struct {
	GameModsDir string `koanf:"game_mods_dir"`
	DataDir     string `koanf:"data_dir"`
	StateDir    string `koanf:"state_dir"`
}

// DeployConfig controls deployment behavior.
type DeployConfig struct {
	Confirm bool `koanf:"confirm"`
}

// GameConfig lists mod IDs shipped with the game. Declared dependencies on
// these are satisfied by definition and never reported as missing.
type GameConfig struct {
	BaseMods []string `koanf:"base_mods"`
	DLCMods  []string `koanf:"dlc_mods"`
}

// Load resolves the configuration. configFile may be empty or point at a
// file that does not exist; only a present-but-unreadable file is an error.
func Load(configFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
				return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load config file").
					WithDetail("path", configFile)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envToKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to decode configuration")
	}
	return &cfg, nil
}

// IsBuiltinMod reports whether id ships with the game (base game or DLC).
func (c *Config) IsBuiltinMod(id string) bool {
	for _, m := range c.Game.BaseMods {
		if m == id {
			return true
		}
	}
	for _, m := range c.Game.DLCMods {
		if m == id {
			return true
		}
	}
	return false
}

// envToKey maps CIVMOD_PATHS__GAME_MODS_DIR to paths.game_mods_dir.
func envToKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}
