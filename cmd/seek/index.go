package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akelsh/seek/internal/index"
)

var fullReindex bool

var indexCmd = &cobra.Command{
	Use:   "index [roots...]",
	Short: "Build or refresh the index over one or more root directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&fullReindex, "full", false, "force a full reindex instead of smart indexing")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, roots []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	progress := func(fraction float64, processed, total int, message string) {
		fmt.Printf("\r[%5.1f%%] %d processed %s", fraction*100, processed, message)
		if fraction >= 1.0 {
			fmt.Println()
		}
	}

	ctx := context.Background()
	var snap index.Snapshot
	if fullReindex {
		snap, err = a.PerformFullIndexing(ctx, roots, progress)
	} else {
		snap, err = a.PerformSmartIndexing(ctx, roots, progress)
	}
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	fmt.Printf("indexed %d files (%d excluded, %d symlinks) at %.0f files/sec\n",
		snap.TotalProcessed, snap.ExcludedPathCount, snap.SymlinkCount, snap.RatePerSecond)
	return nil
}
