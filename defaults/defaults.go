package defaults

import (
	"os"
	"path/filepath"

	humanize "github.com/dustin/go-humanize"
	homedir "github.com/mitchellh/go-homedir"
	e "github.com/pkg/errors"
	"github.com/sahib/config"
)

// CurrentVersion is the current version of gctl's config
const CurrentVersion = 0

// Defaults is the default validation for gctl
var Defaults = DefaultsV0

// DefaultPath is where the config is looked up if nothing else was given.
const DefaultPath = "~/.config/gctl/config.yml"

// ExpandPath resolves `path` (which may start with ~) to an absolute path.
// An empty path resolves to DefaultPath.
func ExpandPath(path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", e.Wrap(err, "failed to expand home dir")
	}

	return filepath.Abs(expanded)
}

// OpenMigratedConfig takes the config.yml at path and loads it.
// If required, it also migrates the config structure to the newest
// version - gctl can always rely on the latest config keys to be present.
func OpenMigratedConfig(path string) (*config.Config, error) {
	fd, err := os.Open(path) // #nosec
	if err != nil {
		return nil, e.Wrap(err, "failed to open config")
	}

	defer fd.Close()

	// Add here any migrations with mgr.Add if needed.
	mgr := config.NewMigrater(CurrentVersion, config.StrictnessPanic)
	mgr.Add(0, nil, DefaultsV0)

	cfg, err := mgr.Migrate(config.NewYamlDecoder(fd))
	if err != nil {
		return nil, e.Wrap(err, "failed to migrate")
	}

	return cfg, nil
}

// OpenConfig works like OpenMigratedConfig, but a missing file
// is not an error; a config with only default values is returned then.
func OpenConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Open(nil, Defaults, config.StrictnessPanic)
	}

	return OpenMigratedConfig(path)
}

// SaveConfig writes `cfg` to `path`, creating parent directories as needed.
func SaveConfig(path string, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return e.Wrap(err, "failed to create config dir")
	}

	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600) // #nosec
	if err != nil {
		return e.Wrap(err, "failed to open config for writing")
	}

	if err := cfg.Save(config.NewYamlEncoder(fd)); err != nil {
		fd.Close()
		return e.Wrap(err, "failed to save config")
	}

	return fd.Close()
}

// Bytes reads a human readable size like "64 MiB" at `key`.
// The validators make sure that the value is parseable.
func Bytes(cfg *config.Config, key string) int64 {
	size, err := humanize.ParseBytes(cfg.String(key))
	if err != nil {
		return 0
	}

	return int64(size)
}
