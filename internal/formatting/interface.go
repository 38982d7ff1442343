// Package formatting renders service status and service listings for the
// command line.
//
// Status can be printed as a rich table, as plain console lines, or as JSON
// or YAML for scripting.
package formatting

import (
	"fmt"
	"io"
	"os"

	"stackctl/internal/api"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatConsole OutputFormat = "console" // Simple console output
	FormatJSON    OutputFormat = "json"    // JSON output
	FormatYAML    OutputFormat = "yaml"    // YAML output
	FormatTable   OutputFormat = "table"   // Rich table output
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(name); f {
	case FormatConsole, FormatJSON, FormatYAML, FormatTable:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, console, json or yaml)", name)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements
	Color  bool // Enable colored output
	// Output defaults to os.Stdout
	Output io.Writer
}

func (o Options) writer() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

// ServiceSummary describes a registered service for listings.
type ServiceSummary struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Namespace    string   `json:"namespace" yaml:"namespace"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	Version      string   `json:"version" yaml:"version"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Formatter renders orchestration results
type Formatter interface {
	// FormatStatus prints the status report. order lists the ids in the
	// order rows should appear; ids missing from status are ignored.
	FormatStatus(status map[string]api.ServiceInfo, order []string) error

	// FormatServices prints the registered services.
	FormatServices(services []ServiceSummary) error

	// FormatData prints arbitrary data
	FormatData(data interface{}) error

	// Configuration
	SetOptions(options Options)
	GetOptions() Options
}

// New creates the appropriate formatter based on options
func New(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatConsole:
		return NewConsoleFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}
