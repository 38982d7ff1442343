package services

import (
	"sync"

	"stackctl/internal/api"
	"stackctl/internal/config"
)

// BaseService holds the identity, configuration and lifecycle status shared
// by every service variant. Variants embed it and drive UpdateStatus from
// their own lifecycle methods.
type BaseService struct {
	mu            sync.RWMutex
	name          string
	namespace     string
	dependencies  []string
	cfg           config.ServiceConfig
	status        api.ServiceStatus
	lastError     error
	stateChangeCb StateChangeCallback
}

// NewBaseService creates a new base service in the not-installed status
func NewBaseService(name, namespace string, dependencies []string, cfg config.ServiceConfig) *BaseService {
	return &BaseService{
		name:         name,
		namespace:    namespace,
		dependencies: append([]string(nil), dependencies...),
		cfg:          cfg,
		status:       api.StatusNotInstalled,
	}
}

// GetName returns the service name
func (b *BaseService) GetName() string {
	return b.name
}

// GetNamespace returns the namespace the service installs into
func (b *BaseService) GetNamespace() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.namespace
}

// GetDependencies returns a copy of the declared dependencies
func (b *BaseService) GetDependencies() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.dependencies...)
}

// GetConfig returns the service configuration
func (b *BaseService) GetConfig() config.ServiceConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

// IsEnabled reports whether the configuration enables the service
func (b *BaseService) IsEnabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg.Enabled
}

// GetStatus returns the current lifecycle status
func (b *BaseService) GetStatus() api.ServiceStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// GetLastError returns the error of the last failed transition
func (b *BaseService) GetLastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastError
}

// SetStateChangeCallback sets the state change callback
func (b *BaseService) SetStateChangeCallback(callback StateChangeCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateChangeCb = callback
}

// UpdateStatus records a status transition and notifies the callback
func (b *BaseService) UpdateStatus(newStatus api.ServiceStatus, err error) {
	b.mu.Lock()
	oldStatus := b.status
	b.status = newStatus
	b.lastError = err
	callback := b.stateChangeCb
	b.mu.Unlock()

	// Call the callback outside of the lock to avoid deadlocks
	if callback != nil && oldStatus != newStatus {
		callback(b.name, oldStatus, newStatus, err)
	}
}

// SetConfig replaces the configuration. Status is left untouched.
func (b *BaseService) SetConfig(cfg config.ServiceConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg
}

// setSpec swaps namespace, dependencies and configuration. Status is left
// untouched.
func (b *BaseService) setSpec(namespace string, dependencies []string, cfg config.ServiceConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.namespace = namespace
	b.dependencies = append([]string(nil), dependencies...)
	b.cfg = cfg
}
