package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kd9lsv/packetmap/internal/netmap"
)

// NewMergeCmd creates the merge command.
func NewMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [map-file...]",
		Short: "Merge map documents from multiple stations",
		Long: `Merge reconciles map documents built from different stations'
perspectives into one combined document.

Nodes and edges are unioned. Where both inputs describe the same node,
the fresher witness wins scalar fields and non-empty values survive
empty ones. Links observed from both ends collapse into a single edge
keeping the better quality and all observed frequencies.

The output document is never read as an input: listing it among the
inputs is reported and skipped, so re-running a merge cannot double
its own previous output into the result.

Examples:
  # Combine two stations' maps
  packetmap merge -o combined.json east.json west.json

  # Merge new perspectives into an existing combined map
  packetmap merge -o combined.json combined-prev.json mountain.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runMergeCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Output path for the merged document (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// runMergeCmd executes the merge command.
func runMergeCmd(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	kept, rejected := netmap.FilterSelfInputs(output, args)
	for _, rej := range rejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", rej)
	}
	if len(kept) == 0 {
		return fmt.Errorf("no usable inputs: every argument was the output document")
	}

	// Inputs load in parallel; the merge itself stays sequential in
	// argument order so fresher-witness tie-breaks are reproducible.
	docs := make([]*netmap.Document, len(kept))
	g, _ := errgroup.WithContext(cmd.Context())
	for i, path := range kept {
		g.Go(func() error {
			doc, err := netmap.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	merged := netmap.NewDocument()
	merged.Generator = docs[0].Generator
	for _, doc := range docs {
		netmap.Merge(merged, doc)
	}

	if err := merged.Save(output); err != nil {
		return fmt.Errorf("failed to save merged document: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merged %d documents into %s (%d nodes, %d edges)\n",
		len(docs), output, merged.Totals.Nodes, merged.Totals.Edges)
	return nil
}
