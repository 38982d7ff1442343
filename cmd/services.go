package cmd

import (
	"github.com/spf13/cobra"

	"stackctl/internal/formatting"
)

var servicesOutputFormat string

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the available service definitions",
	Long: `List every service definition found in the manifests directory together
with its configured version and whether the configuration enables it. No
cluster connection is needed.`,
	Args: cobra.NoArgs,
	RunE: runServices,
}

func runServices(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(servicesOutputFormat)
	if err != nil {
		return err
	}

	application, err := newApplication(true)
	if err != nil {
		return err
	}

	formatter := formatting.New(formatting.Options{
		Format: format,
		Quiet:  quiet,
		Output: cmd.OutOrStdout(),
	})
	return formatter.FormatServices(application.ServiceSummaries())
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	servicesCmd.Flags().StringVarP(&servicesOutputFormat, "output", "o", "table", "Output format (table, console, json, yaml)")
}
