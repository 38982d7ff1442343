// Package definition models declarative service definitions and loads them
// from disk.
//
// Each service lives in its own directory under a definition root:
//
//	services/
//	  istio/service.yaml
//	  minio/service.yaml
//
// A definition names the service's dependencies, its ordered install steps
// (manifest or helm), optional readiness waits per step, post-install
// validation checks and endpoint templates:
//
//	name: MinIO
//	namespace: minio-system
//	dependencies: [storage, cert-manager]
//	config_defaults:
//	  tenant_name: minio
//	install:
//	  - type: helm
//	    release: minio-operator
//	    chart: operator
//	    namespace: minio-system
//	    repo: {name: minio, url: https://operator.min.io}
//	    wait_for:
//	      - type: deployment
//	        name: minio-operator
//	        timeout: 300
//	  - type: manifest
//	    path: manifests/minio/tenant.yaml
//	validations:
//	  - type: custom_resource
//	    group: minio.min.io
//	    version: v2
//	    plural: tenants
//	    name: minio
//	    namespace: minio-system
//	    condition: {path: status.healthStatus, equals: green}
//	endpoints:
//	  - name: console
//	    url: https://minio-console.{{ domain }}
//	    type: web
//
// Structural problems (unknown step types, Helm steps without release,
// chart or namespace, manifest steps without a path, self-dependencies) are
// reported at load time as *api.ConfigError.
package definition
