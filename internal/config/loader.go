package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/tagbox/tagbox/internal/tberrors"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from the TOML file at path, falling back to
	// Default() values for any key the file omits.
	Load() (*Config, error)
}

type loader struct {
	path string
}

// NewLoader creates a new configuration loader for the TOML file at path.
func NewLoader(path string) Loader {
	return &loader{path: path}
}

// Load reads the TOML file, merges it over Default(), and validates the
// result. A missing file is not an error — tagbox runs on defaults alone.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			if verr := Validate(cfg); verr != nil {
				return nil, fmt.Errorf("invalid configuration: %w", verr)
			}
			return cfg, nil
		}
		return nil, tberrors.NewIO(err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, tberrors.NewTomlParse(err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadConfig is a convenience function that loads the config at path.
func LoadConfig(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Write serializes cfg as TOML to path, creating parent directories as
// needed. Used by `tagbox init-config` to seed a starter file.
func Write(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return tberrors.NewTomlParse(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return tberrors.NewIO(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return tberrors.NewIO(err)
	}
	return nil
}
