package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report indexing and monitoring status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.IndexingStatus()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	count, err := a.FileCount()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	size, err := a.SearchStats()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	fmt.Printf("indexed: %v\n", st.IsIndexed)
	fmt.Printf("roots: %v\n", st.IndexedPaths)
	fmt.Printf("files: %s (%s)\n", humanize.Comma(int64(count)), humanize.IBytes(uint64(size)))
	fmt.Printf("monitor: %s\n", a.MonitoringStatus())
	return nil
}
