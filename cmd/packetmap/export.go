package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kd9lsv/packetmap/internal/config"
	"github.com/kd9lsv/packetmap/internal/netmap"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [map-file]",
		Short: "Export the map document to CSV",
		Long: `Export writes the map document's edges or nodes as CSV for
spreadsheets and plotting tools.

The edge export lists one directed link observation per row with
quality, link class and observed frequencies. The node export lists
one station per row with alias, software and position.

Examples:
  # Edge list from the default map to stdout
  packetmap export --edges

  # Node list to a file
  packetmap export --nodes -o nodes.csv packetmap.json

  # Include links blocked by sysop policy
  packetmap export --edges --include-blocked`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().Bool("edges", false, "Export the edge list (default)")
	cmd.Flags().Bool("nodes", false, "Export the node list")
	cmd.Flags().Bool("include-blocked", false, "Include edges blocked by sysop policy")
	cmd.Flags().StringP("output", "o", "", "Write CSV to specified file path instead of stdout")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	mapPath := config.DefaultMapFile
	if len(args) == 1 {
		mapPath = args[0]
	}

	edges, err := cmd.Flags().GetBool("edges")
	if err != nil {
		return err
	}
	nodes, err := cmd.Flags().GetBool("nodes")
	if err != nil {
		return err
	}
	if edges && nodes {
		return fmt.Errorf("--edges and --nodes cannot be used together")
	}

	includeBlocked, err := cmd.Flags().GetBool("include-blocked")
	if err != nil {
		return err
	}

	doc, err := netmap.Load(mapPath)
	if err != nil {
		return fmt.Errorf("failed to load map document: %w", err)
	}

	var out io.Writer = cmd.OutOrStdout()
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(outputPath) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if nodes {
		if err := netmap.WriteNodesCSV(out, doc); err != nil {
			return fmt.Errorf("failed to write node CSV: %w", err)
		}
		return nil
	}
	if err := netmap.WriteEdgesCSV(out, doc, includeBlocked); err != nil {
		return fmt.Errorf("failed to write edge CSV: %w", err)
	}
	return nil
}
