package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/env"
)

// EnvPrefix prefixes environment overrides: runner.executor is HITSHEET_RUNNER_EXECUTOR.
const EnvPrefix = "HITSHEET"

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	"services_config.yaml",
	"services_config.yml",
	"hitsheet.yaml",
	".hitsheet.yaml",
}

// NewViper returns a viper instance with defaults and environment overrides set up.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// FindConfig returns the first known config file in dir, or "".
func FindConfig(dir string) string {
	for _, name := range ConfigFilenames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads path into v and decodes the result. An empty path searches the
// working directory; finding nothing leaves defaults, environment and flags.
func Load(v *viper.Viper, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FindConfig(".")
	}

	var expanded []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else {
			expanded = []byte(env.Expand(string(data)))
			if err := v.MergeConfig(bytes.NewReader(expanded)); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	if expanded != nil {
		if err := restoreKeyCase(cfg, expanded); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// caseSensitive holds the maps whose keys viper would lowercase.
type caseSensitive struct {
	Auth struct {
		Body    map[string]any    `yaml:"body"`
		Headers map[string]string `yaml:"headers"`
	} `yaml:"auth"`
}

// restoreKeyCase re-reads the auth body and headers so their keys keep their
// original case.
func restoreKeyCase(cfg *Config, data []byte) error {
	var raw caseSensitive
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Auth.Body != nil {
		cfg.Auth.Body = raw.Auth.Body
	}
	if raw.Auth.Headers != nil {
		cfg.Auth.Headers = raw.Auth.Headers
	}
	return nil
}

// Decode unmarshals the current viper state.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.ExcelPath = strings.TrimSpace(cfg.ExcelPath)
	if cfg.CollectionName == "" {
		cfg.CollectionName = DefaultConfig().CollectionName
	}
	return cfg, nil
}
