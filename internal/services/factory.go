package services

import (
	"stackctl/internal/config"
	"stackctl/internal/definition"
)

// Factory builds the service variant for a definition and its
// configuration.
type Factory func(def *definition.Definition, cfg config.ServiceConfig) (Service, error)

// NewInstanceFactory returns a Factory that builds manifest-driven
// instances sharing runner and opts.
func NewInstanceFactory(runner StepRunner, opts Options) Factory {
	return func(def *definition.Definition, cfg config.ServiceConfig) (Service, error) {
		return NewInstance(def, cfg, runner, opts), nil
	}
}
