package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/seatwise-io/seatwise/internal/interfaces/cli/migrate"
	"github.com/seatwise-io/seatwise/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "seatwise",
		Short: "Seatwise - subscription seat and entitlement service",
		Long:  `Seatwise manages subscription seat assignments, provider webhooks, and user entitlements.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
