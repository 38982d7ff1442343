package api

// ServiceStatus is the orchestration engine's own record of what it has done
// to a service. It is distinct from cluster ground truth.
type ServiceStatus string

const (
	StatusNotInstalled ServiceStatus = "not_installed"
	StatusInstalling   ServiceStatus = "installing"
	StatusInstalled    ServiceStatus = "installed"
	StatusFailed       ServiceStatus = "failed"
	StatusUpgrading    ServiceStatus = "upgrading"
	StatusUninstalling ServiceStatus = "uninstalling"
)

// IsTransient reports whether the status is an in-progress transition.
func (s ServiceStatus) IsTransient() bool {
	switch s {
	case StatusInstalling, StatusUpgrading, StatusUninstalling:
		return true
	}
	return false
}

// HealthStatus represents the collaborator-derived health of a service.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// Endpoint is a rendered, externally reachable service address.
type Endpoint struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Type string `json:"type" yaml:"type"`
}

// ServiceInfo is the per-service status report aggregated by the registry.
type ServiceInfo struct {
	Name         string        `json:"name" yaml:"name"`
	Namespace    string        `json:"namespace" yaml:"namespace"`
	Status       ServiceStatus `json:"status" yaml:"status"`
	Health       HealthStatus  `json:"health" yaml:"health"`
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	Version      string        `json:"version" yaml:"version"`
	Installed    bool          `json:"installed" yaml:"installed"`
	Dependencies []string      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Endpoints    []Endpoint    `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	LastError    string        `json:"lastError,omitempty" yaml:"lastError,omitempty"`
}
