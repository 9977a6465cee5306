package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "commvault-mcp-server",
	Short: "MCP server exposing the Commvault Command Center API to AI agents",
	Long: `commvault-mcp-server runs a Model Context Protocol server that lets
LLM agents operate a Commvault CommCell: inspect users and user groups,
manage hypervisors, and trigger or schedule workflows.

Run 'commvault-mcp-server setup' once to configure the Command Center
connection and provision credentials, then 'commvault-mcp-server serve'
to start the server.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "commvault-mcp-server version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newSecretCmd())
}
