package executor

import (
	"context"
	"fmt"
	"time"

	"stackctl/internal/api"
	"stackctl/internal/definition"
	"stackctl/internal/template"
	"stackctl/pkg/logging"
)

// DefaultPollInterval is how often wait conditions are re-evaluated.
const DefaultPollInterval = 5 * time.Second

// StepContext carries what a step needs from the service that owns it.
type StepContext struct {
	// Service is the owning service id.
	Service string
	// Index is the position of the step in the definition.
	Index int
	// Namespace is the service's resolved namespace.
	Namespace string
	// Values is the instance-level template context. Step overrides are
	// layered over it.
	Values map[string]interface{}
	// Resolve answers "@source.key|default" references in step overrides and
	// chart values. Nil leaves such strings unresolved.
	Resolve template.ReferenceResolver
	// Version is the configured service version; "latest" or empty leaves
	// the chart version to the package manager.
	Version string
}

// Executor runs install steps against the cluster collaborators.
type Executor struct {
	renderer api.Renderer
	applier  api.ManifestApplier
	packages api.PackageManager
	reader   api.ResourceReader

	pollInterval time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// New creates an executor.
func New(renderer api.Renderer, applier api.ManifestApplier, packages api.PackageManager, reader api.ResourceReader, opts ...Option) *Executor {
	e := &Executor{
		renderer:     renderer,
		applier:      applier,
		packages:     packages,
		reader:       reader,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs the step's primary action and then blocks on each of its
// wait conditions in declaration order. The first failure is returned as
// an *api.StepError; later conditions are not evaluated.
func (e *Executor) Execute(ctx context.Context, step definition.InstallStep, sc StepContext) error {
	var ns string
	switch step.Kind {
	case definition.StepManifest:
		values := e.manifestValues(step, sc)
		ns = manifestNamespace(step, values, sc)
		if err := e.applyManifest(ctx, step, values, ns, sc); err != nil {
			return err
		}
	case definition.StepHelm:
		ns = step.Namespace
		if err := e.installPackage(ctx, step, sc); err != nil {
			return err
		}
	default:
		return &api.StepError{Kind: api.StepApplyFailed, Service: sc.Service, Step: sc.Index, Target: step.Describe(),
			Err: fmt.Errorf("unknown step type %q", step.Kind)}
	}
	return e.waitAll(ctx, step.WaitFor, ns, sc)
}

// Upgrade re-runs a step for an installed service: manifests are
// re-applied and chart releases upgraded in place, then the step's wait
// conditions are honoured again.
func (e *Executor) Upgrade(ctx context.Context, step definition.InstallStep, sc StepContext) error {
	logging.Debug("Executor", "Upgrading step %d of %s (%s)", sc.Index, sc.Service, step.Describe())
	return e.Execute(ctx, step, sc)
}

// Revert undoes a step. Manifest objects that are already gone and chart
// releases that do not exist are not errors. Failures are returned as
// *api.StepError of kind RevertFailed.
func (e *Executor) Revert(ctx context.Context, step definition.InstallStep, sc StepContext) error {
	fail := func(err error) error {
		return &api.StepError{Kind: api.StepRevertFailed, Service: sc.Service, Step: sc.Index, Target: step.Describe(), Err: err}
	}

	switch step.Kind {
	case definition.StepManifest:
		values := e.manifestValues(step, sc)
		ns := manifestNamespace(step, values, sc)
		manifest, err := e.renderer.Render(step.Path, values)
		if err != nil {
			return fail(err)
		}
		if err := e.applier.Delete(ctx, manifest, ns); err != nil {
			return fail(err)
		}
		logging.Info("Executor", "Deleted manifest %s from %s", step.Path, ns)
	case definition.StepHelm:
		exists, err := e.ReleaseExists(ctx, step.Release, step.Namespace)
		if err != nil {
			return fail(err)
		}
		if !exists {
			logging.Info("Executor", "Release %s not found in %s, nothing to uninstall", step.Release, step.Namespace)
			return nil
		}
		if err := e.packages.Uninstall(ctx, step.Release, step.Namespace); err != nil {
			return fail(err)
		}
		logging.Info("Executor", "Uninstalled release %s from %s", step.Release, step.Namespace)
	default:
		return fail(fmt.Errorf("unknown step type %q", step.Kind))
	}
	return nil
}

// ReleaseExists reports whether a release of that name exists in namespace.
func (e *Executor) ReleaseExists(ctx context.Context, release, namespace string) (bool, error) {
	releases, err := e.packages.ListReleases(ctx, namespace)
	if err != nil {
		return false, fmt.Errorf("failed to list releases in %s: %w", namespace, err)
	}
	for _, r := range releases {
		if r.Name == release {
			return true, nil
		}
	}
	return false, nil
}

func (e *Executor) applyManifest(ctx context.Context, step definition.InstallStep, values map[string]interface{}, ns string, sc StepContext) error {
	fail := func(err error) error {
		return &api.StepError{Kind: api.StepApplyFailed, Service: sc.Service, Step: sc.Index, Target: step.Path, Err: err}
	}

	manifest, err := e.renderer.Render(step.Path, values)
	if err != nil {
		return fail(err)
	}
	if err := e.applier.Apply(ctx, manifest, ns); err != nil {
		return fail(err)
	}
	logging.Info("Executor", "Applied manifest %s to %s", step.Path, ns)
	return nil
}

func (e *Executor) installPackage(ctx context.Context, step definition.InstallStep, sc StepContext) error {
	fail := func(err error) error {
		return &api.StepError{Kind: api.StepPackageInstallFailed, Service: sc.Service, Step: sc.Index, Target: step.Release, Err: err}
	}

	if step.Repo != nil && step.Repo.Name != "" && step.Repo.URL != "" {
		if err := e.packages.AddRepo(ctx, step.Repo.Name, step.Repo.URL); err != nil {
			return fail(err)
		}
	}
	if err := e.packages.UpdateRepos(ctx); err != nil {
		return fail(err)
	}

	exists, err := e.ReleaseExists(ctx, step.Release, step.Namespace)
	if err != nil {
		return fail(err)
	}

	req := api.ReleaseRequest{
		Release:   step.Release,
		Chart:     step.ChartRef(),
		Namespace: step.Namespace,
		Values:    e.chartValues(step, sc),
		Version:   chartVersion(step, sc),
	}
	if exists {
		logging.Info("Executor", "Release %s already exists in %s, upgrading", step.Release, step.Namespace)
		err = e.packages.Upgrade(ctx, req)
	} else {
		logging.Info("Executor", "Installing release %s (%s) into %s", step.Release, req.Chart, step.Namespace)
		err = e.packages.Install(ctx, req)
	}
	if err != nil {
		return fail(err)
	}
	return nil
}

// manifestValues merges the instance context with the step's resolved
// overrides.
func (e *Executor) manifestValues(step definition.InstallStep, sc StepContext) map[string]interface{} {
	overrides := step.Context
	if sc.Resolve != nil && overrides != nil {
		overrides = template.ResolveReferences(overrides, sc.Resolve).(map[string]interface{})
	}
	return template.MergeContexts(sc.Values, overrides)
}

func (e *Executor) chartValues(step definition.InstallStep, sc StepContext) map[string]interface{} {
	if sc.Resolve == nil || step.Values == nil {
		return step.Values
	}
	return template.ResolveReferences(step.Values, sc.Resolve).(map[string]interface{})
}

// manifestNamespace picks the step's namespace, then the rendered context's
// namespace, then the service namespace.
func manifestNamespace(step definition.InstallStep, values map[string]interface{}, sc StepContext) string {
	if step.Namespace != "" {
		return step.Namespace
	}
	if ns, ok := values["namespace"].(string); ok && ns != "" {
		return ns
	}
	return sc.Namespace
}

func chartVersion(step definition.InstallStep, sc StepContext) string {
	if step.Version != "" {
		return step.Version
	}
	if sc.Version == "" || sc.Version == "latest" {
		return ""
	}
	return sc.Version
}
