package api

import "context"

// ManifestApplier submits rendered manifests to the cluster.
//
// Apply must be idempotent: re-applying identical content succeeds without
// change. Delete must tolerate resources that are already gone.
type ManifestApplier interface {
	Apply(ctx context.Context, manifest string, namespace string) error
	Delete(ctx context.Context, manifest string, namespace string) error
}

// ReleaseRequest describes a package-manager install or upgrade.
type ReleaseRequest struct {
	Release   string
	Chart     string
	Namespace string
	Values    map[string]interface{}
	// Version pins the chart version; empty means latest.
	Version string
}

// Release is one entry of a package-manager release listing.
type Release struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
	Revision   string `json:"revision,omitempty"`
	Status     string `json:"status,omitempty"`
	Chart      string `json:"chart,omitempty"`
	AppVersion string `json:"app_version,omitempty"`
}

// PackageManager wraps the chart package manager.
type PackageManager interface {
	AddRepo(ctx context.Context, name, url string) error
	UpdateRepos(ctx context.Context) error
	Install(ctx context.Context, req ReleaseRequest) error
	Upgrade(ctx context.Context, req ReleaseRequest) error
	Uninstall(ctx context.Context, release, namespace string) error
	// ListReleases lists releases in namespace, or in all namespaces when
	// namespace is empty.
	ListReleases(ctx context.Context, namespace string) ([]Release, error)
}

// ResourceRef identifies a cluster resource by group/version/resource.
// Core resources use an empty Group.
type ResourceRef struct {
	Group     string
	Version   string
	Resource  string
	Name      string
	Namespace string
}

// String renders the reference as "resource ns/name" for messages.
func (r ResourceRef) String() string {
	kind := r.Resource
	if r.Group != "" {
		kind = r.Resource + "." + r.Group
	}
	if r.Namespace == "" {
		return kind + " " + r.Name
	}
	return kind + " " + r.Namespace + "/" + r.Name
}

// ResourceReader fetches resource documents.
//
// A missing resource is reported as found == false with a nil error; err is
// reserved for transport or mapping failures.
type ResourceReader interface {
	Get(ctx context.Context, ref ResourceRef) (doc map[string]interface{}, found bool, err error)
}

// Renderer renders a manifest template file with a value context. It is a
// pure function of its inputs.
type Renderer interface {
	Render(path string, values map[string]interface{}) (string, error)
}
