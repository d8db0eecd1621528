package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kd9lsv/packetmap/internal/netmap"
)

// NewCompareCmd creates the compare command.
// This command diffs two map snapshots to show how the network changed.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <older-map> <newer-map>",
		Short: "Compare two map snapshots",
		Long: `Compare shows how the network changed between two map documents:
nodes that appeared or went silent, links that came up or dropped, and
link quality shifts.

Keep dated copies of the map (packetmap.json.2026-08-01 and so on) and
compare them to track propagation changes across seasons.

Examples:
  # What changed since the August snapshot
  packetmap compare packetmap-aug.json packetmap.json

  # Machine-readable diff
  packetmap compare --json packetmap-aug.json packetmap.json`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	older, err := netmap.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	newer, err := netmap.Load(args[1])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[1], err)
	}

	diff := netmap.Diff(older, newer)

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(diff)
	}

	writeDiff(cmd.OutOrStdout(), diff)
	return nil
}

// writeDiff renders a diff report as plain text.
func writeDiff(w io.Writer, diff *netmap.DiffReport) {
	if diff.Empty() {
		fmt.Fprintln(w, "No changes")
		return
	}

	fmt.Fprintln(w, diff.Summary())

	writeList := func(heading string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s:\n", heading)
		for _, item := range items {
			fmt.Fprintf(w, "  %s\n", item)
		}
	}

	writeList("New nodes", diff.AddedNodes)
	writeList("Nodes gone", diff.RemovedNodes)
	writeList("New links", diff.AddedEdges)
	writeList("Links gone", diff.RemovedEdges)

	if len(diff.QualityChanges) > 0 {
		fmt.Fprintln(w, "\nQuality changes:")
		for _, qc := range diff.QualityChanges {
			fmt.Fprintf(w, "  %s: %d -> %d\n", qc.Key, qc.Old, qc.New)
		}
	}
}
