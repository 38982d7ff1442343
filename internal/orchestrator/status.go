package orchestrator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"stackctl/internal/api"
	"stackctl/internal/services"
	"stackctl/pkg/logging"
)

// statusProbeLimit caps concurrent cluster probes in GetStatus.
const statusProbeLimit = 4

// ServiceStateChangedEvent represents a lifecycle status change of a
// registered service.
type ServiceStateChangedEvent struct {
	Name      string
	OldStatus api.ServiceStatus
	NewStatus api.ServiceStatus
	Error     error
	Timestamp time.Time
}

// GetStatus reports every registered service. Health and installation
// state are probed from the cluster in parallel; disabled services are not
// probed.
func (r *Registry) GetStatus(ctx context.Context) map[string]api.ServiceInfo {
	all := r.services.GetAll()
	infos := make([]api.ServiceInfo, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusProbeLimit)
	for idx, svc := range all {
		infos[idx] = baseInfo(svc)
		if !svc.IsEnabled() {
			continue
		}
		g.Go(func() error {
			infos[idx].Health = svc.GetHealth(gctx)
			infos[idx].Installed = svc.IsInstalled(gctx)
			return nil
		})
	}
	_ = g.Wait()

	status := make(map[string]api.ServiceInfo, len(infos))
	for _, info := range infos {
		status[info.Name] = info
	}
	return status
}

func baseInfo(svc services.Service) api.ServiceInfo {
	cfg := svc.GetConfig()
	info := api.ServiceInfo{
		Name:         svc.GetName(),
		Namespace:    svc.GetNamespace(),
		Status:       svc.GetStatus(),
		Health:       api.HealthUnknown,
		Enabled:      cfg.Enabled,
		Version:      cfg.Version,
		Dependencies: svc.GetDependencies(),
	}
	if err := svc.GetLastError(); err != nil {
		info.LastError = err.Error()
	}
	if ep, ok := svc.(services.EndpointProvider); ok {
		info.Endpoints = ep.Endpoints("")
	}
	return info
}

// ValidateAll checks the health of every enabled service. Only healthy
// services pass; a degraded service is reported with a warning and fails
// the validation.
func (r *Registry) ValidateAll(ctx context.Context) bool {
	ok := true
	for _, svc := range r.services.GetAll() {
		if !svc.IsEnabled() {
			continue
		}
		name := svc.GetName()

		switch health := svc.GetHealth(ctx); health {
		case api.HealthHealthy:
			logging.Info("Registry", "%s is healthy", name)
		case api.HealthDegraded:
			logging.Warn("Registry", "%s is degraded", name)
			ok = false
		default:
			logging.Error("Registry", nil, "%s is %s", name, health)
			ok = false
		}

		if v, isValidator := svc.(services.Validator); isValidator {
			_, results := v.Validate(ctx)
			for _, res := range results {
				if !res.Passed {
					logging.Debug("Registry", "%s: %s", name, res.Message)
				}
			}
		}
	}
	return ok
}

// SubscribeToStateChanges returns a channel that receives every lifecycle
// status change of a registered service.
func (r *Registry) SubscribeToStateChanges() <-chan ServiceStateChangedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan ServiceStateChangedEvent, 100)
	r.stateChangeSubscribers = append(r.stateChangeSubscribers, ch)
	return ch
}

func (r *Registry) publishStateChangeEvent(name string, oldStatus, newStatus api.ServiceStatus, err error) {
	logging.Debug("Registry", "Service %s status changed: %s -> %s", name, oldStatus, newStatus)

	event := ServiceStateChangedEvent{
		Name:      name,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Error:     err,
		Timestamp: time.Now(),
	}

	// Publish to all subscribers
	r.mu.RLock()
	subscribers := make([]chan<- ServiceStateChangedEvent, len(r.stateChangeSubscribers))
	copy(subscribers, r.stateChangeSubscribers)
	r.mu.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			// Don't block if subscriber can't receive immediately
			logging.Debug("Registry", "Subscriber blocked, skipping event for service %s", name)
		}
	}
}
