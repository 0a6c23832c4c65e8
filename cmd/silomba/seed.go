package main

import (
	"fmt"

	"github.com/silomba/backend/internal/database"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the super admin and default categories",
	Long: `Seed creates the configured super admin when the user table is empty and
adds any default category that does not exist yet. Running it again is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg.DB)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer database.Close(db)

		if err := database.Seed(db, cfg.Seed); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seed complete: super admin %s, %d categories\n", cfg.Seed.SuperAdminEmail, len(cfg.Seed.Categories))
		return nil
	},
}
