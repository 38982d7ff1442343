package formatting

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"stackctl/internal/api"
)

const (
	descriptionMaxLen = 60
	valueMaxLen       = 100
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatStatus renders one row per service followed by the endpoints of
// the installed ones.
func (f *TableFormatter) FormatStatus(status map[string]api.ServiceInfo, order []string) error {
	infos := ordered(status, order)
	if len(infos) == 0 {
		f.formatEmptyMessage("📋", "No services registered")
		return nil
	}

	t := f.createTable()
	t.AppendHeader(f.headers("SERVICE", "NAMESPACE", "VERSION", "ENABLED", "INSTALLED", "STATUS", "HEALTH"))

	var endpoints [][]interface{}
	for _, info := range infos {
		t.AppendRow(table.Row{
			f.paint(text.FgHiWhite, info.Name),
			info.Namespace,
			orDash(info.Version),
			yesNo(info.Enabled),
			yesNo(info.Installed),
			f.paint(statusColor(info.Status), string(info.Status)),
			f.paint(healthColor(info.Health), string(info.Health)),
		})
		if !info.Installed {
			continue
		}
		for _, ep := range info.Endpoints {
			endpoints = append(endpoints, []interface{}{info.Name, ep.Name, ep.URL})
		}
	}
	t.Render()

	for _, info := range infos {
		if info.LastError != "" {
			f.printf("%s %s: %s\n", f.paint(text.FgRed, "✗"), info.Name, info.LastError)
		}
	}

	if len(endpoints) > 0 && !f.options.Quiet {
		et := f.createTable()
		et.AppendHeader(f.headers("SERVICE", "ENDPOINT", "URL"))
		for _, row := range endpoints {
			et.AppendRow(row)
		}
		et.Render()
	}
	return nil
}

// FormatServices renders the registered services
func (f *TableFormatter) FormatServices(services []ServiceSummary) error {
	if len(services) == 0 {
		f.formatEmptyMessage("📋", "No services registered")
		return nil
	}

	t := f.createTable()
	t.AppendHeader(f.headers("ID", "NAME", "NAMESPACE", "VERSION", "ENABLED", "DEPENDS ON", "DESCRIPTION"))
	for _, s := range services {
		t.AppendRow(table.Row{
			f.paint(text.FgHiWhite, s.ID),
			s.Name,
			s.Namespace,
			orDash(s.Version),
			yesNo(s.Enabled),
			joinOrDash(s.Dependencies),
			text.Snip(orDash(s.Description), descriptionMaxLen, "..."),
		})
	}
	t.Render()

	if !f.options.Quiet {
		f.printf("\n%s %s\n", f.paint(text.FgHiBlue, "Total:"), f.paint(text.FgHiWhite, fmt.Sprint(len(services))))
	}
	return nil
}

// FormatData formats generic data using table logic
func (f *TableFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case map[string]interface{}:
		return f.formatObjectData(d)
	case []interface{}:
		return f.formatArrayData(d)
	case string:
		f.printf("%s\n", d)
	default:
		f.printf("%v\n", d)
	}
	return nil
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.writer())
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) headers(names ...string) table.Row {
	row := make(table.Row, 0, len(names))
	for _, n := range names {
		row = append(row, f.paint(text.FgHiCyan, n))
	}
	return row
}

func (f *TableFormatter) paint(color text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return color.Sprint(s)
}

func (f *TableFormatter) printf(format string, args ...interface{}) {
	fmt.Fprintf(f.options.writer(), format, args...)
}

// formatEmptyMessage prints empty result messages
func (f *TableFormatter) formatEmptyMessage(icon, message string) {
	f.printf("%s %s\n", f.paint(text.FgYellow, icon), f.paint(text.FgYellow, message))
}

// formatObjectData formats object data as key-value pairs
func (f *TableFormatter) formatObjectData(data map[string]interface{}) error {
	t := f.createTable()
	t.AppendHeader(f.headers("KEY", "VALUE"))

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		valueStr := text.Snip(fmt.Sprintf("%v", data[key]), valueMaxLen, "...")
		t.AppendRow(table.Row{f.paint(text.FgHiCyan, key), valueStr})
	}

	t.Render()
	return nil
}

// formatArrayData formats array data as a simple list
func (f *TableFormatter) formatArrayData(data []interface{}) error {
	if len(data) == 0 {
		f.formatEmptyMessage("📋", "No items found")
		return nil
	}

	for i, item := range data {
		f.printf("  %d. %v\n", i+1, item)
	}

	f.printf("\n%s %s %s\n",
		f.paint(text.FgHiBlue, "Total:"),
		f.paint(text.FgHiWhite, fmt.Sprint(len(data))),
		f.paint(text.FgHiBlue, "items"))
	return nil
}

func statusColor(s api.ServiceStatus) text.Color {
	switch s {
	case api.StatusInstalled:
		return text.FgGreen
	case api.StatusFailed:
		return text.FgRed
	case api.StatusNotInstalled:
		return text.FgHiBlack
	default:
		return text.FgYellow
	}
}

func healthColor(h api.HealthStatus) text.Color {
	switch h {
	case api.HealthHealthy:
		return text.FgGreen
	case api.HealthDegraded:
		return text.FgYellow
	case api.HealthUnhealthy:
		return text.FgRed
	default:
		return text.FgHiBlack
	}
}
