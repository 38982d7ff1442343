package app

import (
	"fmt"
	"io"
	"os"
	"sort"

	"stackctl/internal/config"
	"stackctl/internal/formatting"
	"stackctl/internal/orchestrator"
	"stackctl/pkg/logging"
)

// Application represents the bootstrapped stackctl runtime: the loaded
// platform configuration and the orchestrator registry wired to the
// cluster.
//
// Example usage:
//
//	cfg := app.NewConfig(false, false, "", "manifests", "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Registry().InstallServices(ctx, application.Targets(nil))
type Application struct {
	config   *Config
	services *Services
}

// NewApplication performs the complete bootstrap sequence:
//
//  1. Configures logging based on the debug and quiet settings
//  2. Loads the platform configuration
//  3. Creates the cluster collaborators (skipped when offline)
//  4. Loads definitions and registers the configured services
func NewApplication(cfg *Config) (*Application, error) {
	configureLogging(cfg)

	if err := loadStack(cfg); err != nil {
		return nil, err
	}

	collaborators, err := NewCollaborators(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to connect to the cluster")
		return nil, fmt.Errorf("failed to initialize cluster clients: %w", err)
	}
	return NewApplicationWithCollaborators(cfg, collaborators)
}

// NewApplicationWithCollaborators bootstraps with pre-built collaborators.
// Logging is left as configured by the caller.
func NewApplicationWithCollaborators(cfg *Config, collaborators Collaborators) (*Application, error) {
	if err := loadStack(cfg); err != nil {
		return nil, err
	}

	services, err := InitializeServices(cfg, collaborators)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Registry returns the orchestrator registry.
func (a *Application) Registry() *orchestrator.Registry {
	return a.services.Registry
}

// Stack returns the loaded platform configuration.
func (a *Application) Stack() config.Config {
	return a.services.Stack
}

// Targets returns ids unchanged, or every enabled and registered service
// when ids is empty.
func (a *Application) Targets(ids []string) []string {
	if len(ids) > 0 {
		return ids
	}

	var targets []string
	for _, id := range a.services.Stack.EnabledServices() {
		if _, ok := a.services.Registry.Get(id); ok {
			targets = append(targets, id)
		}
	}
	return targets
}

// UninstallTargets returns ids unchanged, or every registered service when
// ids is empty. Disabled services are included so they can be removed after
// being switched off.
func (a *Application) UninstallTargets(ids []string) []string {
	if len(ids) > 0 {
		return ids
	}
	return a.services.Registry.IDs()
}

// ServiceSummaries describes every loaded definition, sorted by id.
// Definitions without a configuration entry are listed as disabled.
func (a *Application) ServiceSummaries() []formatting.ServiceSummary {
	ids := make([]string, 0, len(a.services.Definitions))
	for id := range a.services.Definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summaries := make([]formatting.ServiceSummary, 0, len(ids))
	for _, id := range ids {
		def := a.services.Definitions[id]
		svcCfg, configured := a.services.Stack.Service(id)

		s := formatting.ServiceSummary{
			ID:           id,
			Name:         def.Name(),
			Namespace:    def.ResolveNamespace(a.services.Stack.Environment["service_namespace"]),
			Description:  def.Description,
			Enabled:      configured && svcCfg.Enabled,
			Version:      def.Version,
			Dependencies: def.Dependencies,
		}
		if configured {
			s.Version = svcCfg.Version
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func configureLogging(cfg *Config) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	// Logs go to stderr so structured status output stays parseable
	var logOutput io.Writer = os.Stderr
	if cfg.Quiet {
		logOutput = io.Discard
	}
	logging.InitForCLI(appLogLevel, logOutput)
}

func loadStack(cfg *Config) error {
	if cfg.Stack != nil {
		return nil
	}

	stack, path, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if path == "" {
		logging.Debug("Bootstrap", "Using built-in default configuration")
	}

	missing, err := config.CheckCredentials(stack)
	if err != nil && !cfg.Offline {
		return err
	}
	if len(missing) > 0 {
		logging.Debug("Bootstrap", "Certificate credentials not set (%v), self-signed certificates will be used", missing)
	}

	cfg.Stack = &stack
	return nil
}
