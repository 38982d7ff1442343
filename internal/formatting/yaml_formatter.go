package formatting

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"stackctl/internal/api"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

// FormatStatus prints the status report as a YAML mapping keyed by id
func (f *YAMLFormatter) FormatStatus(status map[string]api.ServiceInfo, _ []string) error {
	return f.FormatData(status)
}

// FormatServices prints the service list as a YAML sequence
func (f *YAMLFormatter) FormatServices(services []ServiceSummary) error {
	if services == nil {
		services = []ServiceSummary{}
	}
	return f.FormatData(services)
}

// FormatData formats generic data as YAML
func (f *YAMLFormatter) FormatData(data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to format YAML: %w", err)
	}
	_, err = f.options.writer().Write(out)
	return err
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}
