// Package config provides configuration management for stackctl.
//
// The configuration describes the local cluster, the platform services to
// manage and their per-service settings, free-form environment values such
// as the platform domain, and the region labels used by sample workloads.
//
// # Configuration File
//
// LoadConfig reads an explicit path, or the first existing file of:
//   - config.yaml, config.yml
//   - stackctl.yaml, stackctl.yml
//   - ~/.stackctl.yaml
//   - /etc/stackctl/config.yaml
//
// When no file is found the defaults from GetDefaultConfig are used. A file
// with an empty services section gets the default service set.
//
// # Example
//
//	cluster:
//	  name: stackctl
//	  workers: 3
//	services:
//	  istio:
//	    version: 1.20.0
//	  minio:
//	    enabled: false
//	  storage:
//	    version: 3.9.0
//	    readyTimeout: 15m
//	    config:
//	      replicas: 1
//	environment:
//	  domain: localhost
//
// Services default to enabled with version "latest". The config key of a
// service is layered over the service definition's own defaults when its
// manifests are rendered.
//
// # Validation
//
// Validate runs the shared go-playground validator over the configuration
// and reports every failure as ValidationErrors. Service ids must be
// lowercase DNS labels.
package config
