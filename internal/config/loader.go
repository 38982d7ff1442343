package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stackctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

const saveFileName = "stackctl.yaml"

// These are variables so tests can redirect the search.
var (
	osUserHomeDir = os.UserHomeDir
	systemConfig  = "/etc/stackctl/config.yaml"
)

// SearchPaths returns the locations checked, in order, when no explicit
// configuration file is given.
func SearchPaths() []string {
	paths := []string{"config.yaml", "config.yml", "stackctl.yaml", "stackctl.yml"}
	if home, err := osUserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".stackctl.yaml"))
	}
	return append(paths, systemConfig)
}

// FindConfigFile returns the first existing file of SearchPaths, or "".
func FindConfigFile() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// LoadConfig loads the configuration from path, or from the first file on
// the search path when path is empty. When no file exists the defaults are
// returned. The returned path is the file actually read, if any.
func LoadConfig(path string) (Config, string, error) {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			logging.Info("ConfigLoader", "No configuration file found, using defaults")
			return GetDefaultConfig(), "", nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No configuration file at %s, using defaults", path)
			return GetDefaultConfig(), "", nil
		}
		return Config{}, "", fmt.Errorf("failed to read config from %s: %w", path, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("error loading config from %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, "", fmt.Errorf("invalid config %s: %w", path, err)
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return cfg, path, nil
}

// parseConfig decodes data over the cluster defaults. An empty services
// section selects the default service set.
func parseConfig(data []byte) (Config, error) {
	cfg := Config{Cluster: DefaultCluster()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if len(cfg.Services) == 0 {
		cfg.Services = DefaultServices()
	}
	if cfg.Environment == nil {
		cfg.Environment = map[string]string{}
	}
	if len(cfg.Regions) == 0 {
		cfg.Regions = append([]string(nil), DefaultRegions...)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, defaulting to stackctl.yaml in the
// working directory.
func Save(cfg Config, path string) error {
	if path == "" {
		path = saveFileName
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Saved configuration to %s", path)
	return nil
}
