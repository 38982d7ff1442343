package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"k8s.io/apimachinery/pkg/util/wait"

	"stackctl/internal/api"
	"stackctl/internal/definition"
	"stackctl/pkg/logging"
)

// CheckResult is the outcome of one validation check.
type CheckResult struct {
	Target  string `json:"target" yaml:"target"`
	Passed  bool   `json:"passed" yaml:"passed"`
	Message string `json:"message" yaml:"message"`
}

func (e *Executor) waitAll(ctx context.Context, conds []definition.WaitCondition, ns string, sc StepContext) error {
	for _, w := range conds {
		if err := e.waitFor(ctx, w, ns); err != nil {
			return &api.StepError{Kind: api.StepWaitTimeout, Service: sc.Service, Step: sc.Index, Target: w.Describe(ns), Err: err}
		}
	}
	return nil
}

// waitFor polls the target until it is ready or the condition's timeout
// expires. Reader errors are treated as "not ready yet".
func (e *Executor) waitFor(ctx context.Context, w definition.WaitCondition, ns string) error {
	timeout := w.TimeoutDuration()
	logging.Info("Executor", "Waiting for %s (timeout %s)", w.Describe(ns), timeout)

	err := wait.PollUntilContextTimeout(ctx, e.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		ready, err := e.ready(ctx, w.Target, ns)
		if err != nil {
			logging.Debug("Executor", "Polling %s: %v", w.Describe(ns), err)
			return false, nil
		}
		return ready, nil
	})
	if err != nil {
		return fmt.Errorf("not ready within %s: %w", timeout, err)
	}
	logging.Debug("Executor", "%s is ready", w.Describe(ns))
	return nil
}

func (e *Executor) ready(ctx context.Context, t definition.Target, ns string) (bool, error) {
	doc, found, err := e.reader.Get(ctx, t.Ref(ns))
	if err != nil || !found {
		return false, err
	}
	if t.Kind == definition.TargetDeployment {
		_, _, ok := deploymentReady(doc)
		return ok, nil
	}
	return conditionMet(doc, t.Condition), nil
}

// Check evaluates a validation check once. It never returns an error: read
// failures and missing resources are reported as failed results.
func (e *Executor) Check(ctx context.Context, check definition.ValidationCheck, ns string) CheckResult {
	desc := check.Describe(ns)
	if check.Namespace != "" {
		ns = check.Namespace
	}
	result := CheckResult{Target: desc}

	doc, found, err := e.reader.Get(ctx, check.Ref(ns))
	if err != nil {
		result.Message = fmt.Sprintf("failed to read %s: %v", desc, err)
		return result
	}

	switch check.Kind {
	case definition.TargetDeployment:
		if !found {
			result.Message = fmt.Sprintf("Deployment %s missing in %s", check.Name, ns)
			return result
		}
		ready, desired, ok := deploymentReady(doc)
		result.Passed = ok
		result.Message = fmt.Sprintf("Deployment %s ready (%d/%d)", check.Name, ready, desired)
	case definition.TargetCustomResource:
		if !found {
			result.Message = fmt.Sprintf("Custom resource %s missing in %s", check.Name, ns)
			return result
		}
		result.Passed = conditionMet(doc, check.Condition)
		result.Message = fmt.Sprintf("Custom resource %s in %s", check.Name, ns)
		if c := check.Condition; c != nil && c.Path != "" {
			result.Message += fmt.Sprintf(" condition %s == %v", c.Path, c.Equals)
		}
	default:
		result.Message = fmt.Sprintf("unknown check type %q", check.Kind)
	}
	return result
}

// Exists reports whether the target resource is present. Read errors count
// as absent.
func (e *Executor) Exists(ctx context.Context, t definition.Target, ns string) bool {
	_, found, err := e.reader.Get(ctx, t.Ref(ns))
	if err != nil {
		logging.Debug("Executor", "Existence probe of %s failed: %v", t.Describe(ns), err)
		return false
	}
	return found
}

// deploymentReady compares status.availableReplicas with spec.replicas.
// A deployment scaled to zero is never considered ready.
func deploymentReady(doc map[string]interface{}) (ready, desired int64, ok bool) {
	desired = 1
	if v, found := nested(doc, "spec.replicas"); found {
		if n, isNum := toInt64(v); isNum {
			desired = n
		}
	}
	if v, found := nested(doc, "status.availableReplicas"); found {
		ready, _ = toInt64(v)
	}
	return ready, desired, desired > 0 && ready >= desired
}

// conditionMet walks the dotted path and compares the value found with the
// expected one. No condition means existence is enough.
func conditionMet(doc map[string]interface{}, c *definition.Condition) bool {
	if c == nil || c.Path == "" {
		return true
	}
	v, found := nested(doc, c.Path)
	if !found {
		return c.Equals == nil
	}
	if reflect.DeepEqual(v, c.Equals) {
		return true
	}
	return c.Equals != nil && fmt.Sprint(v) == fmt.Sprint(c.Equals)
}

func nested(doc map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
