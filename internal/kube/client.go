package kube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	yamlutil "k8s.io/apimachinery/pkg/util/yaml"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"stackctl/internal/api"
	"stackctl/pkg/logging"
)

// Client applies manifests to and reads resources from a cluster through
// controller-runtime. It implements api.ManifestApplier and
// api.ResourceReader.
type Client struct {
	client client.Client
}

var (
	_ api.ManifestApplier = (*Client)(nil)
	_ api.ResourceReader  = (*Client)(nil)
)

// RestConfig loads the REST configuration from kubeconfig when given,
// otherwise through controller-runtime's standard detection (KUBECONFIG,
// in-cluster, ~/.kube/config).
func RestConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		cfg, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfig, err)
		}
		return cfg, nil
	}
	cfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get Kubernetes config: %w", err)
	}
	return cfg, nil
}

// New creates a client for the cluster behind cfg.
func New(cfg *rest.Config) (*Client, error) {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	c, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}
	return &Client{client: c}, nil
}

// NewWithClient wraps an existing controller-runtime client.
func NewWithClient(c client.Client) *Client {
	return &Client{client: c}
}

// Apply creates every object of the manifest, or updates it when it already
// exists. Namespaced objects without a namespace are placed in namespace,
// which is created first if missing.
func (c *Client) Apply(ctx context.Context, manifest string, namespace string) error {
	objs, err := decodeManifest(manifest)
	if err != nil {
		return err
	}

	ensured := make(map[string]bool)
	for _, obj := range objs {
		namespaced, err := c.isNamespaced(obj.GroupVersionKind())
		if err != nil {
			return err
		}
		if namespaced {
			if obj.GetNamespace() == "" {
				obj.SetNamespace(namespace)
			}
			if ns := obj.GetNamespace(); ns != "" && !ensured[ns] {
				if err := c.EnsureNamespace(ctx, ns); err != nil {
					return err
				}
				ensured[ns] = true
			}
		}
		if err := c.createOrUpdate(ctx, obj); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes every object of the manifest in reverse document order.
// Objects or resource types that are already gone are ignored.
func (c *Client) Delete(ctx context.Context, manifest string, namespace string) error {
	objs, err := decodeManifest(manifest)
	if err != nil {
		return err
	}

	var errs []error
	for i := len(objs) - 1; i >= 0; i-- {
		obj := objs[i]
		namespaced, err := c.isNamespaced(obj.GroupVersionKind())
		if err != nil {
			if meta.IsNoMatchError(err) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		if namespaced && obj.GetNamespace() == "" {
			obj.SetNamespace(namespace)
		}
		if err := client.IgnoreNotFound(c.client.Delete(ctx, obj)); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", describe(obj), err))
			continue
		}
		logging.Debug("Kube", "Deleted %s", describe(obj))
	}
	return errors.Join(errs...)
}

// Get fetches the resource behind ref. A missing object, or a resource type
// the cluster does not serve, is reported as found == false.
func (c *Client) Get(ctx context.Context, ref api.ResourceRef) (map[string]interface{}, bool, error) {
	gvk, err := c.client.RESTMapper().KindFor(schema.GroupVersionResource{
		Group:    ref.Group,
		Version:  ref.Version,
		Resource: ref.Resource,
	})
	if err != nil {
		if meta.IsNoMatchError(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to map %s: %w", ref, err)
	}

	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(gvk)
	if err := c.client.Get(ctx, client.ObjectKey{Namespace: ref.Namespace, Name: ref.Name}, obj); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s: %w", ref, err)
	}
	return obj.Object, true, nil
}

// EnsureNamespace creates namespace if it does not exist.
func (c *Client) EnsureNamespace(ctx context.Context, namespace string) error {
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: namespace}}
	err := c.client.Get(ctx, client.ObjectKey{Name: namespace}, ns)
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to get namespace %s: %w", namespace, err)
	}
	if err := c.client.Create(ctx, ns); err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create namespace %s: %w", namespace, err)
	}
	logging.Info("Kube", "Created namespace %s", namespace)
	return nil
}

func (c *Client) createOrUpdate(ctx context.Context, obj *unstructured.Unstructured) error {
	err := c.client.Create(ctx, obj)
	if err == nil {
		logging.Debug("Kube", "Created %s", describe(obj))
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create %s: %w", describe(obj), err)
	}

	existing := &unstructured.Unstructured{}
	existing.SetGroupVersionKind(obj.GroupVersionKind())
	if err := c.client.Get(ctx, client.ObjectKeyFromObject(obj), existing); err != nil {
		return fmt.Errorf("failed to get %s: %w", describe(obj), err)
	}
	obj.SetResourceVersion(existing.GetResourceVersion())
	if err := c.client.Update(ctx, obj); err != nil {
		return fmt.Errorf("failed to update %s: %w", describe(obj), err)
	}
	logging.Debug("Kube", "Updated %s", describe(obj))
	return nil
}

func (c *Client) isNamespaced(gvk schema.GroupVersionKind) (bool, error) {
	mapping, err := c.client.RESTMapper().RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return false, fmt.Errorf("failed to map %s: %w", gvk, err)
	}
	return mapping.Scope.Name() == meta.RESTScopeNameNamespace, nil
}

// decodeManifest splits a multi-document YAML or JSON manifest into objects.
// Empty documents are skipped.
func decodeManifest(manifest string) ([]*unstructured.Unstructured, error) {
	decoder := yamlutil.NewYAMLOrJSONDecoder(strings.NewReader(manifest), 4096)

	var objs []*unstructured.Unstructured
	for {
		var ext runtime.RawExtension
		if err := decoder.Decode(&ext); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode manifest: %w", err)
		}
		raw := bytes.TrimSpace(ext.Raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		obj := &unstructured.Unstructured{}
		if err := obj.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("failed to decode manifest document %d: %w", len(objs), err)
		}
		if obj.GetAPIVersion() == "" {
			return nil, fmt.Errorf("failed to decode manifest document %d: apiVersion is missing", len(objs))
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

func describe(obj *unstructured.Unstructured) string {
	if ns := obj.GetNamespace(); ns != "" {
		return fmt.Sprintf("%s %s/%s", obj.GetKind(), ns, obj.GetName())
	}
	return fmt.Sprintf("%s %s", obj.GetKind(), obj.GetName())
}
