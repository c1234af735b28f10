// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toonstack-admin",
	Short: "ToonStack-Admin is the management backend for the ToonStack webtoon platform",
	Long: `ToonStack-Admin is the management backend for the ToonStack webtoon platform
that provides the administrative API for managing users, roles and the
permissions protecting the publishing workflow.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
