package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"stackctl/internal/api"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates an invalid configuration or service definition.
	ExitCodeConfig = 2
	// ExitCodeDependency indicates an unknown dependency or a dependency cycle.
	ExitCodeDependency = 3
	// ExitCodeNotReady indicates a service did not become ready in time, or
	// failed validation.
	ExitCodeNotReady = 4
)

// Global flags shared by every command.
var (
	configPath   string
	manifestsDir string
	kubeconfig   string
	debug        bool
	quiet        bool
)

// rootCmd represents the base command for the stackctl application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stackctl",
	Short: "Bootstrap and manage a local Kubernetes platform",
	Long: `stackctl installs, upgrades and removes the services of a local
Kubernetes platform (service mesh, certificates, storage, object storage and
sample workloads) in dependency order.

Each service is described by a definition under the manifests directory and
enabled through the configuration file.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "stackctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case api.IsConfigError(err):
		return ExitCodeConfig
	case api.IsDependencyError(err):
		return ExitCodeDependency
	case api.IsHealthTimeout(err), errors.Is(err, errUnhealthy):
		return ExitCodeNotReady
	default:
		return ExitCodeError
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Configuration file (default: search config.yaml, stackctl.yaml, ~/.stackctl.yaml, /etc/stackctl/config.yaml)")
	flags.StringVar(&manifestsDir, "manifests", "manifests", "Directory holding one sub-directory per service definition")
	flags.StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: standard detection)")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress log output and progress")

	rootCmd.AddCommand(newVersionCmd())
}
