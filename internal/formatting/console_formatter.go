package formatting

import (
	"fmt"
	"strings"

	"stackctl/internal/api"
)

// ConsoleFormatter provides simple console output formatting
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{
		options: options,
	}
}

// FormatStatus prints one line per service, with endpoints and the last
// error indented below it.
func (f *ConsoleFormatter) FormatStatus(status map[string]api.ServiceInfo, order []string) error {
	infos := ordered(status, order)
	if len(infos) == 0 {
		return f.println("No services registered.")
	}

	var output []string
	for _, info := range infos {
		line := fmt.Sprintf("%s (%s): %s, health %s", info.Name, info.Namespace, info.Status, info.Health)
		if !info.Enabled {
			line += " [disabled]"
		}
		output = append(output, line)
		if f.options.Quiet {
			continue
		}
		if info.Installed {
			for _, ep := range info.Endpoints {
				output = append(output, fmt.Sprintf("  %s: %s", ep.Name, ep.URL))
			}
		}
		if info.LastError != "" {
			output = append(output, fmt.Sprintf("  error: %s", info.LastError))
		}
	}
	return f.println(strings.Join(output, "\n"))
}

// FormatServices prints one line per registered service
func (f *ConsoleFormatter) FormatServices(services []ServiceSummary) error {
	if len(services) == 0 {
		return f.println("No services registered.")
	}

	output := []string{fmt.Sprintf("Registered services (%d):", len(services))}
	for _, s := range services {
		line := fmt.Sprintf("- %s: %s", s.ID, s.Name)
		if s.Description != "" && !f.options.Quiet {
			line += " - " + s.Description
		}
		if len(s.Dependencies) > 0 {
			line += fmt.Sprintf(" (depends on %s)", strings.Join(s.Dependencies, ", "))
		}
		output = append(output, line)
	}
	return f.println(strings.Join(output, "\n"))
}

// FormatData formats generic data (fallback to simple text representation)
func (f *ConsoleFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case map[string]interface{}, []interface{}:
		return f.println(PrettyJSON(d))
	case string:
		return f.println(d)
	default:
		return f.println(fmt.Sprintf("%v", d))
	}
}

// SetOptions updates the formatter options
func (f *ConsoleFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *ConsoleFormatter) GetOptions() Options {
	return f.options
}

func (f *ConsoleFormatter) println(s string) error {
	_, err := fmt.Fprintln(f.options.writer(), s)
	return err
}
