// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dataspace-backend",
	Short: "DataSpace backend is the API service for the DataSpace data exchange",
	Long: `DataSpace backend is the API service for the DataSpace data exchange.
It exposes REST and GraphQL endpoints for organizations and datasets,
authenticates requests against a Keycloak realm and enforces database-backed
role permissions.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
