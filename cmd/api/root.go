package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "incident-service",
	Short: "IT incident tracking and technician assignment API",
	RunE:  runServe,
}

// Execute runs the root command; "serve" is the default.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
