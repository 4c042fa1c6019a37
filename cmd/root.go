// Package cmd defines the CLI commands for the apklist executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apklist",
		Short: "Serves a ranked APK (alcohol per krona) list of the Systembolaget catalog",
		Long: `apklist periodically fetches the full Systembolaget product catalog,
ranks every product by how much alcohol a krona buys, and serves the
result as a single HTML page.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; env and defaults are used otherwise)")

	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the CLI entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
