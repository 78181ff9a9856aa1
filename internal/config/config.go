// Package config loads driver-wide defaults from an optional moonc.toml
// file adjacent to the compiled input (SPEC_FULL.md §2: output directory,
// default -debug). Non-goals exclude optimization flags and linking, not a
// config file for driver ergonomics.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the full set of driver defaults moonc.toml may override. Zero
// values mean "unset": the CLI's own flags win whenever they're explicitly
// passed, this file only supplies fallbacks.
type Config struct {
	OutputDir string `toml:"output_dir"`
	Debug     bool   `toml:"debug"`
}

// Load looks for "moonc.toml" in dir and decodes it. A missing file is not
// an error — it returns the zero Config, meaning "no overrides" — but a
// present, malformed file is.
func Load(dir string) (Config, error) {
	path := filepath.Join(dir, "moonc.toml")

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, errors.Wrapf(err, "stat %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "decode %s", path)
	}
	return cfg, nil
}
