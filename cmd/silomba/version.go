package main

import (
	"fmt"

	"github.com/silomba/backend/internal/handlers"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "silomba %s (api v1)\n", handlers.Version)
		return nil
	},
}
