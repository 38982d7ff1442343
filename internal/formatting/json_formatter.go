package formatting

import (
	"encoding/json"
	"fmt"

	"stackctl/internal/api"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

// FormatStatus prints the status report as a JSON object keyed by id
func (f *JSONFormatter) FormatStatus(status map[string]api.ServiceInfo, _ []string) error {
	return f.FormatData(status)
}

// FormatServices prints the service list as a JSON array
func (f *JSONFormatter) FormatServices(services []ServiceSummary) error {
	if services == nil {
		services = []ServiceSummary{}
	}
	return f.FormatData(services)
}

// FormatData formats generic data as JSON
func (f *JSONFormatter) FormatData(data interface{}) error {
	out, err := f.marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.options.writer(), out)
	return err
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}

// marshal converts data to JSON string with appropriate formatting
func (f *JSONFormatter) marshal(data interface{}) (string, error) {
	var jsonBytes []byte
	var err error

	if f.options.Quiet {
		// Compact JSON for quiet mode
		jsonBytes, err = json.Marshal(data)
	} else {
		jsonBytes, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}
	return string(jsonBytes), nil
}
