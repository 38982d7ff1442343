package config

import (
	"sort"
	"time"
)

// Config is the top-level platform configuration.
type Config struct {
	// Cluster describes the throwaway local cluster the platform targets.
	Cluster ClusterConfig `yaml:"cluster"`

	// Services maps a service id to its per-service settings. Only services
	// listed here are registered with the orchestrator.
	Services map[string]ServiceConfig `yaml:"services" validate:"dive,keys,service_id,endkeys"`

	// Environment holds free-form platform settings such as domain.
	Environment map[string]string `yaml:"environment,omitempty"`

	// Regions lists the region labels sample workloads are spread across.
	Regions []string `yaml:"regions,omitempty" validate:"dive,required"`
}

// ClusterConfig describes the local cluster.
type ClusterConfig struct {
	Name             string   `yaml:"name" validate:"required,service_id"`
	Workers          int      `yaml:"workers" validate:"gte=0,lte=16"`
	RegistryPort     int      `yaml:"registry_port" validate:"gte=1,lte=65535"`
	APIPort          int      `yaml:"api_port" validate:"gte=1,lte=65535"`
	IngressHTTPPort  int      `yaml:"ingress_http_port" validate:"gte=1,lte=65535"`
	IngressHTTPSPort int      `yaml:"ingress_https_port" validate:"gte=1,lte=65535"`
	VolumeMounts     []string `yaml:"volume_mounts,omitempty"`
}

// ServiceConfig carries the per-service settings of one registered service.
type ServiceConfig struct {
	// Enabled defaults to true when omitted.
	Enabled bool `yaml:"enabled"`

	// Version is the chart or release version to deploy. "latest" leaves the
	// choice to the package manager.
	Version string `yaml:"version" validate:"required"`

	// Settings are layered over the definition's config defaults when the
	// manifest context is built.
	Settings map[string]interface{} `yaml:"config,omitempty"`

	// ReadyTimeout bounds the post-install readiness wait. Zero selects the
	// registry default.
	ReadyTimeout time.Duration `yaml:"readyTimeout,omitempty" validate:"gte=0"`
}

// UnmarshalYAML applies the enabled/version defaults for keys the document
// leaves out.
func (s *ServiceConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawServiceConfig struct {
		Enabled      *bool                  `yaml:"enabled"`
		Version      string                 `yaml:"version"`
		Settings     map[string]interface{} `yaml:"config"`
		ReadyTimeout time.Duration          `yaml:"readyTimeout"`
	}
	var raw rawServiceConfig
	if err := unmarshal(&raw); err != nil {
		return err
	}

	s.Enabled = true
	if raw.Enabled != nil {
		s.Enabled = *raw.Enabled
	}
	s.Version = raw.Version
	if s.Version == "" {
		s.Version = DefaultVersion
	}
	s.Settings = raw.Settings
	s.ReadyTimeout = raw.ReadyTimeout
	return nil
}

// Domain returns the configured platform domain.
func (c Config) Domain() string {
	if d := c.Environment["domain"]; d != "" {
		return d
	}
	return DefaultDomain
}

// Service returns the configuration of id and whether it is configured.
func (c Config) Service(id string) (ServiceConfig, bool) {
	svc, ok := c.Services[id]
	return svc, ok
}

// IsServiceEnabled reports whether id is configured and enabled.
func (c Config) IsServiceEnabled(id string) bool {
	svc, ok := c.Services[id]
	return ok && svc.Enabled
}

// EnabledServices returns the ids of every enabled service, sorted.
func (c Config) EnabledServices() []string {
	var ids []string
	for id, svc := range c.Services {
		if svc.Enabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
