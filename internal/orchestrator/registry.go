package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"stackctl/internal/api"
	"stackctl/internal/config"
	"stackctl/internal/definition"
	"stackctl/internal/dependency"
	"stackctl/internal/services"
	"stackctl/pkg/logging"
)

// DefaultReadyTimeout bounds the post-install readiness wait of a service
// whose configuration sets none.
const DefaultReadyTimeout = 600 * time.Second

// Config holds the configuration for the registry.
type Config struct {
	// Factory builds the service variant for newly registered ids.
	Factory services.Factory
	// ReadyTimeout overrides DefaultReadyTimeout.
	ReadyTimeout time.Duration
}

// Registry owns every registered service and coordinates batch install,
// uninstall and upgrade in dependency order. It is safe for concurrent
// reads; batch operations are meant to run one at a time.
type Registry struct {
	services     services.ServiceRegistry
	factory      services.Factory
	readyTimeout time.Duration

	// State change event subscribers
	stateChangeSubscribers []chan<- ServiceStateChangedEvent

	mu sync.RWMutex
}

// New creates an empty registry.
func New(cfg Config) *Registry {
	timeout := cfg.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	return &Registry{
		services:     services.NewRegistry(),
		factory:      cfg.Factory,
		readyTimeout: timeout,
	}
}

// Register validates def and cfg and registers the service. Registering
// a known id swaps its definition and configuration in place; the runtime
// status is kept.
func (r *Registry) Register(def *definition.Definition, cfg config.ServiceConfig) error {
	if def == nil {
		return fmt.Errorf("cannot register nil definition")
	}
	if err := config.ValidateService(def.ID, cfg); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return api.NewConfigError(def.ID, verrs[0].Field, verrs[0].Message)
		}
		return err
	}
	if err := definition.Validate(def, def.ID); err != nil {
		return err
	}

	if existing, ok := r.services.Get(def.ID); ok {
		rc, ok := existing.(services.Reconfigurable)
		if !ok {
			return fmt.Errorf("service %s is already registered and cannot be reconfigured", def.ID)
		}
		if err := rc.Reconfigure(def, cfg); err != nil {
			return fmt.Errorf("failed to reconfigure %s: %w", def.ID, err)
		}
		logging.Debug("Registry", "Updated registration of %s", def.ID)
		return nil
	}

	if r.factory == nil {
		return fmt.Errorf("no service factory configured")
	}
	svc, err := r.factory(def, cfg)
	if err != nil {
		return fmt.Errorf("failed to create service %s: %w", def.ID, err)
	}
	return r.Add(svc)
}

// Add registers a pre-built service.
func (r *Registry) Add(svc services.Service) error {
	if err := r.services.Register(svc); err != nil {
		return err
	}
	svc.SetStateChangeCallback(r.publishStateChangeEvent)
	logging.Debug("Registry", "Registered service %s (dependencies: %v)", svc.GetName(), svc.GetDependencies())
	return nil
}

// Get returns the service registered under id.
func (r *Registry) Get(id string) (services.Service, bool) {
	return r.services.Get(id)
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	return r.services.Names()
}

// Reset drops every registered service.
func (r *Registry) Reset() {
	r.services.Clear()
	logging.Debug("Registry", "Registry reset")
}

// Resolve returns the install order of the closure of ids.
func (r *Registry) Resolve(ids []string) ([]string, error) {
	return dependency.Resolve(ids, r.lookup)
}

// Graph returns the dependency graph of every registered service.
func (r *Registry) Graph() *dependency.Graph {
	g := dependency.New()
	for _, svc := range r.services.GetAll() {
		g.AddNode(dependency.Node{ID: svc.GetName(), DependsOn: svc.GetDependencies()})
	}
	return g
}

func (r *Registry) lookup(id string) ([]string, bool) {
	svc, ok := r.services.Get(id)
	if !ok {
		return nil, false
	}
	return svc.GetDependencies(), true
}

// InstallServices installs the closure of ids in dependency order. The
// batch stops at the first service that fails to install or to become
// ready; services installed before it stay installed. Disabled services and
// services the cluster already has are skipped. Failing validation checks
// are logged and do not stop the batch.
func (r *Registry) InstallServices(ctx context.Context, ids []string) error {
	order, err := r.Resolve(ids)
	if err != nil {
		return err
	}

	run := uuid.NewString()[:8]
	logging.Info("Registry", "[%s] Install order: %v", run, order)

	for _, id := range order {
		svc, ok := r.services.Get(id)
		if !ok {
			return api.NewServiceNotFoundError(id)
		}
		if !svc.IsEnabled() {
			logging.Info("Registry", "[%s] Skipping %s: disabled", run, id)
			continue
		}
		if svc.IsInstalled(ctx) {
			logging.Info("Registry", "[%s] Skipping %s: already installed", run, id)
			continue
		}

		logging.Info("Registry", "[%s] Installing %s", run, id)
		if err := svc.Install(ctx); err != nil {
			if !api.IsValidationFailure(err) {
				return fmt.Errorf("failed to install %s: %w", id, err)
			}
			logging.Warn("Registry", "[%s] %v", run, err)
		}

		if err := r.awaitReady(ctx, svc, run); err != nil {
			return err
		}
	}

	logging.Info("Registry", "[%s] Installed %d service(s)", run, len(order))
	return nil
}

// UninstallServices uninstalls the closure of ids in reverse install order.
// Every service is attempted, disabled ones included, so a service disabled
// after installing can still be removed. The failures are joined.
func (r *Registry) UninstallServices(ctx context.Context, ids []string) error {
	order, err := r.Resolve(ids)
	if err != nil {
		return err
	}
	order = dependency.Reverse(order)

	run := uuid.NewString()[:8]
	logging.Info("Registry", "[%s] Uninstall order: %v", run, order)

	var errs []error
	for _, id := range order {
		svc, ok := r.services.Get(id)
		if !ok {
			logging.Warn("Registry", "[%s] Service %s is not registered, skipping", run, id)
			continue
		}
		if !svc.IsEnabled() {
			logging.Debug("Registry", "[%s] %s is disabled, uninstalling anyway", run, id)
		}

		logging.Info("Registry", "[%s] Uninstalling %s", run, id)
		if err := svc.Uninstall(ctx); err != nil {
			logging.Error("Registry", err, "[%s] Failed to uninstall %s", run, id)
			errs = append(errs, fmt.Errorf("failed to uninstall %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// UpgradeServices upgrades the closure of ids in install order and waits
// for each one to become ready. It stops at the first failure.
func (r *Registry) UpgradeServices(ctx context.Context, ids []string) error {
	order, err := r.Resolve(ids)
	if err != nil {
		return err
	}

	run := uuid.NewString()[:8]
	logging.Info("Registry", "[%s] Upgrade order: %v", run, order)

	for _, id := range order {
		svc, ok := r.services.Get(id)
		if !ok {
			return api.NewServiceNotFoundError(id)
		}
		if !svc.IsEnabled() {
			logging.Info("Registry", "[%s] Skipping %s: disabled", run, id)
			continue
		}

		logging.Info("Registry", "[%s] Upgrading %s", run, id)
		if err := svc.Upgrade(ctx); err != nil {
			return fmt.Errorf("failed to upgrade %s: %w", id, err)
		}
		if err := r.awaitReady(ctx, svc, run); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) awaitReady(ctx context.Context, svc services.Service, run string) error {
	timeout := svc.GetConfig().ReadyTimeout
	if timeout <= 0 {
		timeout = r.readyTimeout
	}

	logging.Info("Registry", "[%s] Waiting up to %s for %s to become ready", run, timeout, svc.GetName())
	if !svc.WaitForReady(ctx, timeout) {
		err := &api.HealthTimeoutError{Service: svc.GetName(), Timeout: timeout}
		logging.Error("Registry", err, "[%s] Aborting batch", run)
		return err
	}
	logging.Info("Registry", "[%s] %s is ready", run, svc.GetName())
	return nil
}
