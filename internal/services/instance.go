package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"stackctl/internal/api"
	"stackctl/internal/config"
	"stackctl/internal/definition"
	"stackctl/internal/executor"
	"stackctl/internal/template"
	"stackctl/pkg/logging"
)

// DefaultHealthInterval is how often WaitForReady re-reads the health.
const DefaultHealthInterval = 10 * time.Second

// Options carries the platform-wide values every instance shares.
type Options struct {
	// Domain is the platform domain exposed to templates as "domain".
	Domain string
	// Environment is exposed to templates as "env" and answers "@env.key"
	// references.
	Environment map[string]string
	// DefaultNamespace is used for definitions that declare no namespace.
	// Empty falls back to the service id.
	DefaultNamespace string
	// HealthInterval overrides DefaultHealthInterval.
	HealthInterval time.Duration
}

// Instance is the manifest-driven service: it runs the install steps of its
// definition through a StepRunner and derives health from the definition's
// validation checks.
type Instance struct {
	*BaseService

	// opMu serialises lifecycle operations on the instance.
	opMu sync.Mutex

	specMu   sync.RWMutex
	def      *definition.Definition
	settings map[string]interface{}

	runner StepRunner
	opts   Options
	engine *template.Engine
}

var (
	_ Service          = (*Instance)(nil)
	_ Reconfigurable   = (*Instance)(nil)
	_ Validator        = (*Instance)(nil)
	_ EndpointProvider = (*Instance)(nil)
)

// NewInstance creates an instance in the not-installed status.
func NewInstance(def *definition.Definition, cfg config.ServiceConfig, runner StepRunner, opts Options) *Instance {
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = DefaultHealthInterval
	}
	if opts.Domain == "" {
		opts.Domain = config.DefaultDomain
	}

	inst := &Instance{
		runner: runner,
		opts:   opts,
		engine: template.New(),
	}
	inst.BaseService = NewBaseService(def.ID, def.ResolveNamespace(opts.DefaultNamespace), def.Dependencies, cfg)
	inst.def = def
	inst.settings = inst.effectiveSettings(def, cfg)
	return inst
}

// Definition returns the definition the instance currently runs.
func (i *Instance) Definition() *definition.Definition {
	i.specMu.RLock()
	defer i.specMu.RUnlock()
	return i.def
}

// Reconfigure replaces definition and configuration. The lifecycle status
// and last error are kept.
func (i *Instance) Reconfigure(def *definition.Definition, cfg config.ServiceConfig) error {
	if def.ID != i.GetName() {
		return fmt.Errorf("cannot reconfigure %s with definition %s", i.GetName(), def.ID)
	}

	i.specMu.Lock()
	i.def = def
	i.settings = i.effectiveSettings(def, cfg)
	i.specMu.Unlock()

	i.setSpec(def.ResolveNamespace(i.opts.DefaultNamespace), def.Dependencies, cfg)
	logging.Debug("Instance", "Reconfigured %s (enabled=%t, version=%s)", def.ID, cfg.Enabled, cfg.Version)
	return nil
}

// Install runs every install step in order, then the validation checks.
// A disabled service returns nil without a transition. A step failure
// leaves the service failed; failing checks are reported as
// *api.ValidationFailure with the service still installed.
func (i *Instance) Install(ctx context.Context) error {
	i.opMu.Lock()
	defer i.opMu.Unlock()

	name := i.GetName()
	if !i.IsEnabled() {
		logging.Debug("Instance", "Service %s is disabled, not installing", name)
		return nil
	}

	def := i.Definition()
	i.UpdateStatus(api.StatusInstalling, nil)
	logging.Info("Instance", "Installing %s (%d steps)", name, len(def.Install))

	for idx, step := range def.Install {
		if err := i.runner.Execute(ctx, step, i.stepContext(idx)); err != nil {
			i.UpdateStatus(api.StatusFailed, err)
			logging.Error("Instance", err, "Install of %s failed at step %d", name, idx)
			return err
		}
	}

	passed, results := i.validate(ctx, def)
	i.UpdateStatus(api.StatusInstalled, nil)
	logging.Info("Instance", "Installed %s", name)

	if !passed {
		vf := &api.ValidationFailure{Service: name, Failed: failedMessages(results)}
		logging.Warn("Instance", "%v", vf)
		return vf
	}
	return nil
}

// Uninstall reverts the install steps in reverse order. Every step is
// attempted; the failures are joined.
func (i *Instance) Uninstall(ctx context.Context) error {
	i.opMu.Lock()
	defer i.opMu.Unlock()

	name := i.GetName()
	def := i.Definition()
	i.UpdateStatus(api.StatusUninstalling, nil)
	logging.Info("Instance", "Uninstalling %s", name)

	var errs []error
	for idx := len(def.Install) - 1; idx >= 0; idx-- {
		if err := i.runner.Revert(ctx, def.Install[idx], i.stepContext(idx)); err != nil {
			logging.Warn("Instance", "Uninstall step %d of %s failed, continuing: %v", idx, name, err)
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		i.UpdateStatus(api.StatusFailed, err)
		return err
	}
	i.UpdateStatus(api.StatusNotInstalled, nil)
	logging.Info("Instance", "Uninstalled %s", name)
	return nil
}

// Upgrade re-runs every step in upgrade mode. Disabled services are left
// alone.
func (i *Instance) Upgrade(ctx context.Context) error {
	i.opMu.Lock()
	defer i.opMu.Unlock()

	name := i.GetName()
	if !i.IsEnabled() {
		logging.Debug("Instance", "Service %s is disabled, not upgrading", name)
		return nil
	}

	def := i.Definition()
	i.UpdateStatus(api.StatusUpgrading, nil)
	logging.Info("Instance", "Upgrading %s to %s", name, i.GetConfig().Version)

	for idx, step := range def.Install {
		if err := i.runner.Upgrade(ctx, step, i.stepContext(idx)); err != nil {
			i.UpdateStatus(api.StatusFailed, err)
			return err
		}
	}
	i.UpdateStatus(api.StatusInstalled, nil)
	return nil
}

// IsInstalled asks the cluster. Services with chart releases are installed
// when every release exists. Pure manifest services are installed when
// every validation target exists. A service with neither signal is never
// reported as installed.
func (i *Instance) IsInstalled(ctx context.Context) bool {
	def := i.Definition()
	ns := i.GetNamespace()

	if releases := def.HelmSteps(); len(releases) > 0 {
		for _, step := range releases {
			exists, err := i.runner.ReleaseExists(ctx, step.Release, step.Namespace)
			if err != nil {
				logging.Debug("Instance", "Release probe for %s failed: %v", def.ID, err)
				return false
			}
			if !exists {
				return false
			}
		}
		return true
	}

	if len(def.Validations) == 0 {
		return false
	}
	for _, check := range def.Validations {
		if !i.runner.Exists(ctx, check.Target, ns) {
			return false
		}
	}
	return true
}

// GetHealth evaluates the validation checks: all passing is healthy, none
// passing is unhealthy, anything in between degraded. Without checks the
// health is unknown.
func (i *Instance) GetHealth(ctx context.Context) api.HealthStatus {
	_, results := i.validate(ctx, i.Definition())
	if len(results) == 0 {
		return api.HealthUnknown
	}

	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	switch passed {
	case len(results):
		return api.HealthHealthy
	case 0:
		return api.HealthUnhealthy
	default:
		return api.HealthDegraded
	}
}

// WaitForReady polls GetHealth until it reports healthy or timeout
// elapses. A service without checks has no readiness signal and is ready
// at once.
func (i *Instance) WaitForReady(ctx context.Context, timeout time.Duration) bool {
	if len(i.Definition().Validations) == 0 {
		return true
	}

	err := wait.PollUntilContextTimeout(ctx, i.opts.HealthInterval, timeout, true, func(ctx context.Context) (bool, error) {
		health := i.GetHealth(ctx)
		logging.Debug("Instance", "Health of %s: %s", i.GetName(), health)
		return health == api.HealthHealthy, nil
	})
	return err == nil
}

// Validate runs every validation check once.
func (i *Instance) Validate(ctx context.Context) (bool, []executor.CheckResult) {
	return i.validate(ctx, i.Definition())
}

func (i *Instance) validate(ctx context.Context, def *definition.Definition) (bool, []executor.CheckResult) {
	ns := i.GetNamespace()
	results := make([]executor.CheckResult, 0, len(def.Validations))
	passed := true
	for _, check := range def.Validations {
		r := i.runner.Check(ctx, check, ns)
		if !r.Passed {
			passed = false
		}
		results = append(results, r)
	}
	return passed, results
}

// Endpoints renders the endpoint templates of the definition. An empty
// domain selects the platform domain.
func (i *Instance) Endpoints(domain string) []api.Endpoint {
	def := i.Definition()
	if len(def.Endpoints) == 0 {
		return nil
	}

	values := i.Context()
	if domain != "" {
		values["domain"] = domain
	}

	endpoints := make([]api.Endpoint, 0, len(def.Endpoints))
	for _, tpl := range def.Endpoints {
		endpoints = append(endpoints, api.Endpoint{
			Name: i.engine.Expand(tpl.Name, values),
			URL:  i.engine.Expand(tpl.URL, values),
			Type: tpl.Type,
		})
	}
	return endpoints
}

// Context returns the instance-level template context: service_name,
// namespace, domain and env first, then every configured setting. Config
// defaults of the definition were folded into the settings on
// construction.
func (i *Instance) Context() map[string]interface{} {
	env := make(map[string]interface{}, len(i.opts.Environment))
	for k, v := range i.opts.Environment {
		env[k] = v
	}

	ctx := map[string]interface{}{
		"service_name": i.GetName(),
		"namespace":    i.GetNamespace(),
		"domain":       i.opts.Domain,
		"env":          env,
	}

	i.specMu.RLock()
	template.SetDefaults(ctx, i.settings)
	i.specMu.RUnlock()
	return ctx
}

func (i *Instance) stepContext(idx int) executor.StepContext {
	return executor.StepContext{
		Service:   i.GetName(),
		Index:     idx,
		Namespace: i.GetNamespace(),
		Values:    i.Context(),
		Resolve:   i.resolveReference,
		Version:   i.GetConfig().Version,
	}
}

// resolveReference answers "@config.key", "@env.key" and "@service.key"
// references in step overrides.
func (i *Instance) resolveReference(source, key string) (interface{}, bool) {
	switch source {
	case "config":
		i.specMu.RLock()
		defer i.specMu.RUnlock()
		v, ok := i.settings[key]
		return v, ok
	case "env":
		v, ok := i.opts.Environment[key]
		return v, ok
	case "service":
		switch key {
		case "name":
			return i.GetName(), true
		case "namespace":
			return i.GetNamespace(), true
		case "version":
			return i.GetConfig().Version, true
		}
	}
	return nil, false
}

// effectiveSettings layers the definition's config defaults and the derived
// gateway name under the configured settings.
func (i *Instance) effectiveSettings(def *definition.Definition, cfg config.ServiceConfig) map[string]interface{} {
	settings := template.MergeContexts(cfg.Settings)
	template.SetDefaults(settings, def.ConfigDefaults)
	if _, ok := settings["gateway_name"]; !ok {
		settings["gateway_name"] = EnvFromDomain(i.opts.Domain) + "-gateway"
	}
	return settings
}

// EnvFromDomain derives the environment name from the first label of the
// domain. Local domains, addresses and single labels map to "local".
func EnvFromDomain(domain string) string {
	if domain == "" || domain == "localhost" || domain == "127.0.0.1" {
		return "local"
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "local"
	}
	return labels[0]
}

func failedMessages(results []executor.CheckResult) []string {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Message)
		}
	}
	return failed
}
