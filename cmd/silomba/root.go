package main

import (
	"fmt"
	"os"

	"github.com/silomba/backend/internal/config"
	"github.com/silomba/backend/pkg/logger"
	"github.com/silomba/backend/pkg/utils"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "silomba",
	Short: "SILOMBA competition catalogue backend",
	Long: `SILOMBA serves the competition catalogue API: registration and login,
categories, competition submission with moderation, and role management.

Configuration is read from the environment (and a .env file when present).

  silomba            Start the HTTP server
  silomba seed       Create the super admin and default categories
  silomba version    Print the build version`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init()
		cfg = config.Load()
		utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
