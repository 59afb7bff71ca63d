package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Drafter5000/Drafter5000-sub000/internal/interfaces/cli/migrate"
	"github.com/Drafter5000/Drafter5000-sub000/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "drafter",
		Short: "Drafter - subscription billing service",
		Long:  `Drafter's billing service: plan catalog, Stripe synchronization, webhook reconciliation and usage gating.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
