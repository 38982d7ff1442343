package services

import (
	"fmt"
	"sync"

	"stackctl/internal/api"
)

// registry is a simple implementation of ServiceRegistry that remembers
// registration order
type registry struct {
	mu       sync.RWMutex
	services map[string]Service
	order    []string
}

// NewRegistry creates a new service registry
func NewRegistry() ServiceRegistry {
	return &registry{
		services: make(map[string]Service),
	}
}

// Register adds a service to the registry
func (r *registry) Register(service Service) error {
	if service == nil {
		return fmt.Errorf("cannot register nil service")
	}

	name := service.GetName()
	if name == "" {
		return fmt.Errorf("service has empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	r.services[name] = service
	r.order = append(r.order, name)
	return nil
}

// Unregister removes a service from the registry
func (r *registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; !exists {
		return api.NewServiceNotFoundError(name)
	}

	delete(r.services, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a service by name
func (r *registry) Get(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, exists := r.services[name]
	return service, exists
}

// GetAll returns all registered services
func (r *registry) GetAll() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]Service, 0, len(r.order))
	for _, name := range r.order {
		services = append(services, r.services[name])
	}
	return services
}

// Names returns the registered service names
func (r *registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Clear drops every registered service
func (r *registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services = make(map[string]Service)
	r.order = nil
}
