package definition

import (
	"fmt"
	"time"

	"stackctl/internal/api"
)

// DefaultWaitTimeout bounds a wait condition that sets no timeout.
const DefaultWaitTimeout = 300 * time.Second

// FileName is the definition file expected in every service directory.
const FileName = "service.yaml"

// StepKind selects how an install step is carried out.
type StepKind string

const (
	// StepManifest renders a manifest template and applies it.
	StepManifest StepKind = "manifest"
	// StepHelm installs a chart release through the package manager.
	StepHelm StepKind = "helm"
)

// TargetKind selects what a wait condition or validation check reads.
type TargetKind string

const (
	TargetDeployment     TargetKind = "deployment"
	TargetCustomResource TargetKind = "custom_resource"
)

// Definition is the static description of one platform service. It is a
// value: nothing mutates it after loading.
type Definition struct {
	// ID is the directory name the definition was loaded from.
	ID string `json:"-"`

	DisplayName    string                 `json:"name,omitempty"`
	Namespace      string                 `json:"namespace,omitempty"`
	Description    string                 `json:"description,omitempty"`
	Version        string                 `json:"version,omitempty"`
	Dependencies   []string               `json:"dependencies,omitempty" validate:"dive,service_id"`
	ConfigDefaults map[string]interface{} `json:"config_defaults,omitempty"`
	Install        []InstallStep          `json:"install,omitempty" validate:"dive"`
	Validations    []ValidationCheck      `json:"validations,omitempty" validate:"dive"`
	Endpoints      []EndpointTemplate     `json:"endpoints,omitempty" validate:"dive"`
}

// Repository is a chart repository a Helm step pulls from.
type Repository struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty" validate:"omitempty,url"`
}

// InstallStep is one unit of install work.
type InstallStep struct {
	Kind StepKind `json:"type,omitempty" validate:"oneof=manifest helm"`

	// manifest steps
	Path    string                 `json:"path,omitempty" validate:"required_if=Kind manifest"`
	Context map[string]interface{} `json:"context,omitempty"`

	// Namespace is the target namespace. Helm steps must set it.
	Namespace string `json:"namespace,omitempty" validate:"required_if=Kind helm"`

	// helm steps
	Release string                 `json:"release,omitempty" validate:"required_if=Kind helm"`
	Chart   string                 `json:"chart,omitempty" validate:"required_if=Kind helm"`
	Repo    *Repository            `json:"repo,omitempty"`
	Values  map[string]interface{} `json:"values,omitempty"`
	Version string                 `json:"version,omitempty"`

	WaitFor []WaitCondition `json:"wait_for,omitempty" validate:"dive"`
}

// ChartRef returns the chart reference handed to the package manager.
func (s InstallStep) ChartRef() string {
	if s.Repo != nil && s.Repo.Name != "" {
		return s.Repo.Name + "/" + s.Chart
	}
	return s.Chart
}

// Describe names what the step acts on.
func (s InstallStep) Describe() string {
	if s.Kind == StepHelm {
		return s.Release
	}
	return s.Path
}

// Condition compares the value at a dotted path of a resource document.
type Condition struct {
	Path   string      `json:"path,omitempty"`
	Equals interface{} `json:"equals,omitempty"`
}

// Target identifies a deployment or custom resource to read.
type Target struct {
	Kind      TargetKind `json:"type" validate:"oneof=deployment custom_resource"`
	Name      string     `json:"name" validate:"required"`
	Namespace string     `json:"namespace,omitempty"`
	Group     string     `json:"group,omitempty" validate:"required_if=Kind custom_resource"`
	Version   string     `json:"version,omitempty" validate:"required_if=Kind custom_resource"`
	Plural    string     `json:"plural,omitempty" validate:"required_if=Kind custom_resource"`
	Condition *Condition `json:"condition,omitempty"`
}

// Ref returns the resource reference of the target in namespace ns. The
// target's own namespace wins when set.
func (t Target) Ref(ns string) api.ResourceRef {
	if t.Namespace != "" {
		ns = t.Namespace
	}
	if t.Kind == TargetDeployment {
		return api.ResourceRef{Group: "apps", Version: "v1", Resource: "deployments", Name: t.Name, Namespace: ns}
	}
	return api.ResourceRef{Group: t.Group, Version: t.Version, Resource: t.Plural, Name: t.Name, Namespace: ns}
}

// Describe renders the target as "<kind> <ns>/<name>".
func (t Target) Describe(ns string) string {
	if t.Namespace != "" {
		ns = t.Namespace
	}
	kind := string(t.Kind)
	if t.Kind == TargetCustomResource {
		kind = t.Plural + "." + t.Group
	}
	if ns == "" {
		return fmt.Sprintf("%s %s", kind, t.Name)
	}
	return fmt.Sprintf("%s %s/%s", kind, ns, t.Name)
}

// WaitCondition blocks a step until its target is ready.
type WaitCondition struct {
	Target
	// Timeout is in seconds; zero selects DefaultWaitTimeout.
	Timeout int `json:"timeout,omitempty" validate:"gte=0"`
}

// TimeoutDuration returns the effective timeout.
func (w WaitCondition) TimeoutDuration() time.Duration {
	if w.Timeout <= 0 {
		return DefaultWaitTimeout
	}
	return time.Duration(w.Timeout) * time.Second
}

// ValidationCheck is a read-only post-install check.
type ValidationCheck struct {
	Target
}

// EndpointTemplate describes a user-facing address. Name and URL may use
// {{ var }} placeholders.
type EndpointTemplate struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
	Type string `json:"type,omitempty"`
}

// ResolveNamespace returns the namespace the service's manifests target:
// the declared namespace, else fallback, else the id.
func (d *Definition) ResolveNamespace(fallback string) string {
	if d.Namespace != "" {
		return d.Namespace
	}
	if fallback != "" {
		return fallback
	}
	return d.ID
}

// HelmSteps returns the package-install steps in declaration order.
func (d *Definition) HelmSteps() []InstallStep {
	var steps []InstallStep
	for _, s := range d.Install {
		if s.Kind == StepHelm {
			steps = append(steps, s)
		}
	}
	return steps
}

// Name returns the display name, defaulting to the id.
func (d *Definition) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ID
}
