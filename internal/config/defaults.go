package config

const (
	DefaultVersion     = "latest"
	DefaultDomain      = "localhost"
	DefaultClusterName = "stackctl"
)

// DefaultRegions are used when the configuration lists none.
var DefaultRegions = []string{"us", "eu", "ap"}

// DefaultCluster returns the default local cluster layout.
func DefaultCluster() ClusterConfig {
	return ClusterConfig{
		Name:             DefaultClusterName,
		Workers:          3,
		RegistryPort:     5000,
		APIPort:          6443,
		IngressHTTPPort:  80,
		IngressHTTPSPort: 443,
	}
}

// DefaultServices returns the stock platform service set.
func DefaultServices() map[string]ServiceConfig {
	return map[string]ServiceConfig{
		"istio":        {Enabled: true, Version: "1.20.0"},
		"cert-manager": {Enabled: true, Version: "v1.13.0"},
		"storage":      {Enabled: true, Version: "3.9.0"},
		"minio":        {Enabled: true, Version: "7.1.1"},
		"sample-app":   {Enabled: true, Version: DefaultVersion},
	}
}

// GetDefaultConfig returns the configuration used when no file is found.
func GetDefaultConfig() Config {
	return Config{
		Cluster:     DefaultCluster(),
		Services:    DefaultServices(),
		Environment: map[string]string{},
		Regions:     append([]string(nil), DefaultRegions...),
	}
}
