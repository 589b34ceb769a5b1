package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	serveCmd := newServeCmd()
	rootCmd := &cobra.Command{
		Use:           "itarix",
		Short:         "ITARIX API server and pricing tools",
		Long:          "itarix runs the ITARIX REST API, applies database migrations and prices quotes from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
		PersistentPreRun: func(*cobra.Command, []string) {
			loadLocalEnv()
		},
	}

	rootCmd.AddCommand(
		serveCmd,
		newMigrateCmd(),
		newQuoteCmd(),
		newCatalogCmd(),
	)
	return rootCmd
}

// loadLocalEnv reads .env when present; real environment variables win.
func loadLocalEnv() {
	_ = godotenv.Load()
}
