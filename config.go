package nfcheck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config represents the .nfcheck.yaml configuration file.
// Environment variables override values from the file; command-line flags
// override both.
type Config struct {
	// Format selects the report formatter: text, json or yaml.
	Format string `yaml:"format" env:"NFCHECK_FORMAT" env-default:"text"`

	// Color is auto, always or never.
	Color string `yaml:"color" env:"NFCHECK_COLOR" env-default:"auto"`

	// Workers bounds how many relations are evaluated at once.
	// Zero means one per CPU.
	Workers int `yaml:"workers" env:"NFCHECK_WORKERS"`

	// MaxAttributes refuses relations wider than this; key enumeration
	// visits 2^n subsets. Zero means no limit. DefaultMaxAttributes applies
	// only when neither the file nor the environment sets it.
	MaxAttributes int `yaml:"max_attributes" env:"NFCHECK_MAX_ATTRIBUTES"`

	// MaxSubsets aborts a relation after this many closures. Zero means no limit.
	MaxSubsets int `yaml:"max_subsets" env:"NFCHECK_MAX_SUBSETS"`

	// Assert holds expressions every report must satisfy.
	Assert []string `yaml:"assert" env:"NFCHECK_ASSERT" env-separator:";"`

	// Extensions are the file extensions collected when walking directories.
	Extensions []string `yaml:"extensions" env:"NFCHECK_EXTENSIONS" env-default:"fd"`
}

// DefaultMaxAttributes is the relation width limit when none is configured.
const DefaultMaxAttributes = 20

const maxAttributesEnv = "NFCHECK_MAX_ATTRIBUTES"

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".nfcheck.yaml", ".nfcheck.yml", "nfcheck.yaml", "nfcheck.yml"}

// LoadConfig finds and loads the nearest config file walking up from dir.
// When there is none, the configuration comes from the environment and
// defaults alone.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if errors.Is(err, ErrConfigNotFound) {
		return LoadEnvConfig()
	}

	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// LoadEnvConfig builds a configuration from environment variables and defaults.
func LoadEnvConfig() (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.applyDefaults(nil)

	return &cfg, nil
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path, applying environment
// overrides and defaults.
func LoadConfigFile(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(filepath.Clean(path), &cfg); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyDefaults(configKeys(path))

	return &cfg, nil
}

// applyDefaults fills limits that neither the file nor the environment set.
// cleanenv cannot tell an explicit zero from a missing key, and zero means
// no limit.
func (c *Config) applyDefaults(fileKeys map[string]any) {
	if _, ok := fileKeys["max_attributes"]; ok {
		return
	}

	if _, ok := os.LookupEnv(maxAttributesEnv); ok {
		return
	}

	c.MaxAttributes = DefaultMaxAttributes
}

// configKeys returns the top-level keys of a config file, or nil when it
// cannot be read as YAML.
func configKeys(path string) map[string]any {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil
	}

	return keys
}
