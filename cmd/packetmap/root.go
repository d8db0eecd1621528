package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for packetmap.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packetmap",
		Short: "Packet-radio network topology crawler",
		Long: `Packetmap maps an amateur packet-radio network by crawling it through
the operator's own node. It connects to the node's telnet port, walks
the network hop by hop over NET/ROM, interrogates each node for its
ports, routes and heard stations, and writes the result to a JSON map
document.

Maps built from different stations' perspectives can be merged, diffed
against earlier snapshots, and exported to CSV for plotting.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewMergeCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
