package cmd

import (
	"github.com/spf13/cobra"

	"stackctl/internal/formatting"
)

var statusOutputFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of every registered service",
	Long: `Show the lifecycle status, cluster health, installation state and
endpoints of every registered service.

Examples:
  stackctl status
  stackctl status -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(statusOutputFormat)
	if err != nil {
		return err
	}

	application, err := newApplication(false)
	if err != nil {
		return err
	}

	registry := application.Registry()
	status := registry.GetStatus(commandContext(cmd.Context()))

	formatter := formatting.New(formatting.Options{
		Format: format,
		Quiet:  quiet,
		Color:  format == formatting.FormatTable,
		Output: cmd.OutOrStdout(),
	})
	return formatter.FormatStatus(status, registry.IDs())
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusOutputFormat, "output", "o", "table", "Output format (table, console, json, yaml)")
}
