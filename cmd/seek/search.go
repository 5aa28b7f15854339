package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Aliases: []string{"s"},
	Short:   "Search the index",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum number of results (default: 1000)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	q := strings.Join(args, " ")
	result, err := a.Search(context.Background(), q, searchLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	for _, e := range result.Entries {
		fmt.Println(e.FullPath)
	}
	fmt.Printf("%d results in %.3fs\n", len(result.Entries), result.SearchTimeSecs)
	return nil
}
