package api

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NotFoundError represents a resource not found error with contextual information.
// The registry returns it when an id in a resolved order has no registered instance.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "service", "definition", "release")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// NewServiceNotFoundError creates a service not found error.
func NewServiceNotFoundError(name string) *NotFoundError {
	return NewNotFoundError("service", name)
}

// DependencyError reports a dependency closure that cannot be ordered: either
// an id in the closure is unknown, or the graph contains a cycle.
// It is fatal to the whole batch and never retried.
type DependencyError struct {
	// Unknown is the id that could not be looked up.
	Unknown string
	// RequiredBy is the service that declared the unknown dependency, empty
	// when the unknown id was one of the requested targets.
	RequiredBy string
	// Cycle lists every node still above zero in-degree after sorting.
	Cycle []string
}

func (e *DependencyError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("circular dependency detected involving: %s", strings.Join(e.Cycle, ", "))
	}
	if e.RequiredBy != "" {
		return fmt.Sprintf("service %s (required by %s) is not registered", e.Unknown, e.RequiredBy)
	}
	return fmt.Sprintf("service %s is not registered", e.Unknown)
}

// IsDependencyError checks if an error is or wraps a DependencyError.
func IsDependencyError(err error) bool {
	var depErr *DependencyError
	return errors.As(err, &depErr)
}

// StepErrorKind classifies step failures.
type StepErrorKind string

const (
	StepApplyFailed          StepErrorKind = "ApplyFailed"
	StepPackageInstallFailed StepErrorKind = "PackageInstallFailed"
	StepWaitTimeout          StepErrorKind = "WaitTimeout"
	StepRevertFailed         StepErrorKind = "RevertFailed"
)

// StepError is returned by the step executor when one install step fails.
type StepError struct {
	Kind    StepErrorKind
	Service string
	// Step is the zero-based index of the step in the service definition.
	Step int
	// Target names what the step acted on: a manifest path, a release, or
	// for WaitTimeout the condition target ("deployment ns/name").
	Target string
	Err    error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("%s: service %s step %d (%s)", e.Kind, e.Service, e.Step, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsStepError reports whether err is a StepError of the given kind.
// An empty kind matches any StepError.
func IsStepError(err error, kind StepErrorKind) bool {
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		return false
	}
	return kind == "" || stepErr.Kind == kind
}

// ValidationFailure records post-install checks that did not pass. It is
// non-fatal: the install is not reverted and the service stays installed.
type ValidationFailure struct {
	Service string
	Failed  []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Service, strings.Join(e.Failed, "; "))
}

// IsValidationFailure checks if an error is or wraps a ValidationFailure.
func IsValidationFailure(err error) bool {
	var vf *ValidationFailure
	return errors.As(err, &vf)
}

// HealthTimeoutError is raised by the registry when a freshly installed
// service does not report healthy within its ready timeout.
type HealthTimeoutError struct {
	Service string
	Timeout time.Duration
}

func (e *HealthTimeoutError) Error() string {
	return fmt.Sprintf("%s failed to become ready within %s", e.Service, e.Timeout)
}

// IsHealthTimeout checks if an error is or wraps a HealthTimeoutError.
func IsHealthTimeout(err error) bool {
	var ht *HealthTimeoutError
	return errors.As(err, &ht)
}

// ConfigError is a load-time problem with a service definition or the
// platform configuration. It is never produced while executing steps.
type ConfigError struct {
	// Source is the file or service id the problem was found in.
	Source  string
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration in %s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("invalid configuration in %s: field '%s': %s", e.Source, e.Field, e.Message)
}

// NewConfigError creates a ConfigError.
func NewConfigError(source, field, message string) *ConfigError {
	return &ConfigError{Source: source, Field: field, Message: message}
}

// IsConfigError checks if an error is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
