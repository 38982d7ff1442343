package app

import (
	"stackctl/internal/config"
)

// DefaultManifestsDir is where service definitions and manifest templates
// are looked up when no directory is given.
const DefaultManifestsDir = "manifests"

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Quiet discards log output
	Quiet bool

	// Custom configuration file (optional)
	// When empty, the search path is used
	ConfigPath string

	// ManifestsDir holds one directory per service definition
	ManifestsDir string

	// Kubeconfig overrides the standard kubeconfig detection
	Kubeconfig string

	// Offline skips creating cluster collaborators
	Offline bool

	// Stack is the loaded platform configuration. When set before
	// bootstrap, loading is skipped.
	Stack *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(debug, quiet bool, configPath, manifestsDir, kubeconfig string) *Config {
	if manifestsDir == "" {
		manifestsDir = DefaultManifestsDir
	}
	return &Config{
		Debug:        debug,
		Quiet:        quiet,
		ConfigPath:   configPath,
		ManifestsDir: manifestsDir,
		Kubeconfig:   kubeconfig,
	}
}
