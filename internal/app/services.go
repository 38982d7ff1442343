package app

import (
	"fmt"
	"sort"

	"stackctl/internal/api"
	"stackctl/internal/config"
	"stackctl/internal/definition"
	"stackctl/internal/executor"
	"stackctl/internal/helm"
	"stackctl/internal/kube"
	"stackctl/internal/orchestrator"
	"stackctl/internal/services"
	"stackctl/internal/template"
	"stackctl/pkg/logging"
)

// Collaborators are the cluster-facing implementations the step executor
// drives. Offline bootstrap leaves everything but the renderer unset.
type Collaborators struct {
	Renderer api.Renderer
	Applier  api.ManifestApplier
	Reader   api.ResourceReader
	Packages api.PackageManager
}

// NewCollaborators creates the production collaborators: a
// controller-runtime client for manifests and resource reads, the helm CLI
// for charts and a file renderer rooted at the manifests directory.
func NewCollaborators(cfg *Config) (Collaborators, error) {
	c := Collaborators{Renderer: template.NewFileRenderer(cfg.ManifestsDir)}
	if cfg.Offline {
		return c, nil
	}

	restCfg, err := kube.RestConfig(cfg.Kubeconfig)
	if err != nil {
		return Collaborators{}, err
	}
	kc, err := kube.New(restCfg)
	if err != nil {
		return Collaborators{}, err
	}

	hc := helm.New(cfg.Kubeconfig)
	if err := hc.CheckAvailable(); err != nil {
		logging.Warn("Bootstrap", "Chart steps will fail: %v", err)
	}

	c.Applier = kc
	c.Reader = kc
	c.Packages = hc
	return c, nil
}

// Services holds the initialized registry together with what it was built
// from.
type Services struct {
	// Registry owns every registered service.
	Registry *orchestrator.Registry

	// Definitions maps every loaded definition by id, registered or not.
	Definitions map[string]*definition.Definition

	// Stack is the platform configuration the services were registered with.
	Stack config.Config
}

// InitializeServices loads the service definitions and registers every one
// the configuration lists.
//
// Definitions without a configuration entry are loaded but not registered.
// Configured services without a definition are reported and ignored.
func InitializeServices(cfg *Config, c Collaborators) (*Services, error) {
	if cfg.Stack == nil {
		return nil, fmt.Errorf("platform configuration not loaded")
	}
	stack := *cfg.Stack

	exec := executor.New(c.Renderer, c.Applier, c.Packages, c.Reader)
	registry := orchestrator.New(orchestrator.Config{
		Factory: services.NewInstanceFactory(exec, services.Options{
			Domain:           stack.Domain(),
			Environment:      stack.Environment,
			DefaultNamespace: stack.Environment["service_namespace"],
		}),
	})

	defs, err := definition.NewLoader(cfg.ManifestsDir).LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load service definitions: %w", err)
	}

	byID := make(map[string]*definition.Definition, len(defs))
	for _, def := range defs {
		byID[def.ID] = def

		svcCfg, ok := stack.Service(def.ID)
		if !ok {
			logging.Debug("Bootstrap", "Service %s has no configuration, not registering", def.ID)
			continue
		}
		if err := registry.Register(def, svcCfg); err != nil {
			return nil, fmt.Errorf("failed to register service %s: %w", def.ID, err)
		}
	}

	ids := make([]string, 0, len(stack.Services))
	for id := range stack.Services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			logging.Warn("Bootstrap", "Service %s is configured but has no definition in %s", id, cfg.ManifestsDir)
		}
	}

	logging.Info("Bootstrap", "Registered %d of %d service definitions", len(registry.IDs()), len(defs))
	return &Services{
		Registry:    registry,
		Definitions: byID,
		Stack:       stack,
	}, nil
}
