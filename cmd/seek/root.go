// Command seek is the CLI front end for the file-search index: index,
// search, watch and status subcommands over an internal/app.App bundle.
// Grounded on jra3-linear-fuse's cmd/linear-fuse/commands/root.go
// (persistent flags + Execute) and Yakitrak-obsidian-cli's per-command
// file layout, adapted from a single root package into package main.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akelsh/seek/internal/app"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:     "seek",
	Short:   "A local, instant file-search index",
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "index database path (default: "+app.DefaultDBPath()+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "seek: %v\n", err)
		os.Exit(1)
	}
}

func openApp() (*app.App, error) {
	return app.Open(dbPath)
}
