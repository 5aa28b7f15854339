package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [roots...]",
	Short: "Start the live change monitor and block until interrupted",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, roots []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.StartMonitoring(roots); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	fmt.Printf("watching %v, press Ctrl+C to stop\n", roots)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("stopping monitor...")
	return a.StopMonitoring()
}
