package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// defaultPath is read when present and no file is named.
const defaultPath = "./config.yaml"

// Load is LoadFile with the path from CONFIG_PATH.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_PATH"))
}

// LoadFile builds the configuration from defaults, then the YAML file, then
// the environment, each overriding the last, and validates the result.
// A named file must exist; without one ./config.yaml is optional.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := read(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func read(path string, cfg *Config) error {
	named := path != ""
	if !named {
		path = defaultPath
	}

	if _, err := os.Stat(path); err != nil {
		if named || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("read env: %w", err)
		}
		return nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// EnvHelp lists every environment variable the configuration reads, with
// its default and description.
func EnvHelp() (string, error) {
	var cfg Config
	return cleanenv.GetDescription(&cfg, nil)
}
