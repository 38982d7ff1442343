package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every enabled service is healthy",
	Long: `Run the validation checks of every enabled service against the cluster.
The command fails unless every service is healthy; degraded services count as
failures.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	application, err := newApplication(false)
	if err != nil {
		return err
	}

	if !application.Registry().ValidateAll(commandContext(cmd.Context())) {
		return errUnhealthy
	}
	fmt.Fprintln(cmd.OutOrStdout(), text.FgGreen.Sprint("✓ All enabled services are healthy"))
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
