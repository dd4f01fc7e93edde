package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/julienduc-econ/finquiz/internal/database"
	"github.com/julienduc-econ/finquiz/schemas"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the MySQL schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			db, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Connect() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			if err := database.ApplyMigrations(cmd.Context(), db, schemas.Migrations); err != nil {
				return fmt.Errorf("database.ApplyMigrations() > %w", err)
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}
}
