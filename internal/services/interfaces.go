package services

import (
	"context"
	"time"

	"stackctl/internal/api"
	"stackctl/internal/config"
	"stackctl/internal/definition"
	"stackctl/internal/executor"
)

// Service is the capability set the registry drives. Concrete services are
// variants chosen at registration time; the manifest-driven Instance is the
// default one.
type Service interface {
	// Lifecycle management
	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
	Upgrade(ctx context.Context) error

	// Cluster probes. Neither reads nor writes the lifecycle status.
	IsInstalled(ctx context.Context) bool
	GetHealth(ctx context.Context) api.HealthStatus
	WaitForReady(ctx context.Context, timeout time.Duration) bool

	// State management
	GetStatus() api.ServiceStatus
	GetLastError() error

	// Service metadata
	GetName() string
	GetNamespace() string
	GetDependencies() []string
	GetConfig() config.ServiceConfig
	IsEnabled() bool

	// State change notifications
	// The service should call this callback when its status changes
	SetStateChangeCallback(callback StateChangeCallback)
}

// StateChangeCallback is called when a service's lifecycle status changes
type StateChangeCallback func(name string, oldStatus, newStatus api.ServiceStatus, err error)

// Reconfigurable is implemented by services that accept a new definition
// and configuration in place. Runtime status must survive the swap.
type Reconfigurable interface {
	Reconfigure(def *definition.Definition, cfg config.ServiceConfig) error
}

// Validator is an optional interface for services that expose their
// individual validation checks.
type Validator interface {
	Validate(ctx context.Context) (bool, []executor.CheckResult)
}

// EndpointProvider is an optional interface for services with user-facing
// addresses.
type EndpointProvider interface {
	Endpoints(domain string) []api.Endpoint
}

// StepRunner executes and reverts install steps. *executor.Executor
// implements it.
type StepRunner interface {
	Execute(ctx context.Context, step definition.InstallStep, sc executor.StepContext) error
	Upgrade(ctx context.Context, step definition.InstallStep, sc executor.StepContext) error
	Revert(ctx context.Context, step definition.InstallStep, sc executor.StepContext) error
	Check(ctx context.Context, check definition.ValidationCheck, namespace string) executor.CheckResult
	Exists(ctx context.Context, target definition.Target, namespace string) bool
	ReleaseExists(ctx context.Context, release, namespace string) (bool, error)
}

var _ StepRunner = (*executor.Executor)(nil)

// ServiceRegistry stores registered services by name
type ServiceRegistry interface {
	// Register adds a service to the registry
	Register(service Service) error

	// Unregister removes a service from the registry
	Unregister(name string) error

	// Get returns a service by name
	Get(name string) (Service, bool)

	// GetAll returns all registered services in registration order
	GetAll() []Service

	// Names returns the registered names in registration order
	Names() []string

	// Clear removes every service
	Clear()
}
