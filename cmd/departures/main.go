// Package main is the departures service entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/app"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "departures",
		Short:   "Departure movements service",
		Long:    `Tracks transit departure movements, submits declarations downstream and records downstream responses.`,
		Version: version,
	}

	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Run: func(cmd *cobra.Command, args []string) {
			app.New().Run()
		},
	}
}
