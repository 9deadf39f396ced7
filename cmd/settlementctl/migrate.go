package main

import (
	"bank-settlement-engine/internal/bootstrap"
	"bank-settlement-engine/internal/storage/postgres"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the ledger schema",
		Long: `Applies the embedded PostgreSQL migrations, or creates the SQLite schema
when the sqlite driver is selected. Safe to run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DB.Driver == "postgres" {
				if err := postgres.RunMigrations(cfg.DB.DSN); err != nil {
					return err
				}
				pterm.Success.Println("PostgreSQL migrations applied")
				return nil
			}

			store, err := bootstrap.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			pterm.Success.Printf("SQLite schema ready at %s\n", cfg.DB.Path)
			return nil
		},
	}
}
