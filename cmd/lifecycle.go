package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stackctl/internal/app"
	"stackctl/internal/orchestrator"
)

// batchOperation is one of the registry's batch methods.
type batchOperation func(r *orchestrator.Registry, ctx context.Context, ids []string) error

var installCmd = &cobra.Command{
	Use:   "install [service...]",
	Short: "Install services and their dependencies",
	Long: `Install the given services, and everything they depend on, in dependency
order. Without arguments every enabled service of the configuration is
installed.

Services that are already installed or disabled are skipped. The batch stops
at the first service that fails to install or to become ready.

Examples:
  stackctl install
  stackctl install istio minio`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, "Installing", (*app.Application).Targets, (*orchestrator.Registry).InstallServices)
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [service...]",
	Short: "Uninstall services in reverse dependency order",
	Long: `Uninstall the given services, and everything they depend on, dependents
first. Without arguments every registered service is uninstalled, including
services the configuration disables.

Every service is attempted; failures are reported together at the end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, "Uninstalling", (*app.Application).UninstallTargets, (*orchestrator.Registry).UninstallServices)
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [service...]",
	Short: "Upgrade services to their configured versions",
	Long: `Re-apply the install steps of the given services in upgrade mode, in
dependency order, waiting for each one to become ready. Without arguments
every enabled service is upgraded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, "Upgrading", (*app.Application).Targets, (*orchestrator.Registry).UpgradeServices)
	},
}

// targetSelector picks the batch targets from the command arguments.
type targetSelector func(a *app.Application, ids []string) []string

func runBatch(cmd *cobra.Command, ids []string, verb string, selectTargets targetSelector, op batchOperation) error {
	application, err := newApplication(false)
	if err != nil {
		return err
	}

	targets := selectTargets(application, ids)
	if len(targets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No services to act on.")
		return nil
	}

	ctx, cancel := signal.NotifyContext(commandContext(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry := application.Registry()
	p := startProgress(cmd.OutOrStdout(), registry, verb)
	err = op(registry, ctx, targets)
	p.stop(err)
	return err
}

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(upgradeCmd)
}
