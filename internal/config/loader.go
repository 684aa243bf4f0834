package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigFile = "config.yaml"

// Load builds the configuration from an optional YAML file plus WORDBOOK_*,
// BROWSER_*, LOG_* and METRICS_* variables, which win over the file.
//
// The file is path, or $CONFIG_PATH, or ./config.yaml. Only the last one may
// be absent. The result is not validated so flags can still be applied.
func Load(path string) (*Config, error) {
	file, required := configFile(path)

	var cfg Config
	_, statErr := os.Stat(file)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(file, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	case required || !errors.Is(statErr, fs.ErrNotExist):
		return nil, fmt.Errorf("config: file %s: %w", file, statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}
	return &cfg, nil
}

// configFile picks the file to read and whether it has to exist.
func configFile(path string) (string, bool) {
	if path != "" {
		return path, true
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env, true
	}
	return defaultConfigFile, false
}
