package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hongminglow/itarix-api/internal/storage/postgres"
)

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				databaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
			}
			if databaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			store, err := postgres.Connect(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			defer store.Close()

			version, err := store.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "database at migration version %d\n", version)
			return err
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")
	return cmd
}
