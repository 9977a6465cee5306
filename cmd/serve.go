package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Commvault/commvault-mcp-server/internal/app"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveConfigPath overrides the default configuration directory.
var serveConfigPath string

// serveCmd starts the MCP server with the configured transport.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Starts the MCP server on the transport configured in config.yaml
(streamable-http, sse or stdio).

The HTTP transports require every request to carry the server secret as a
bearer credential; repeated failures from a client are slowed down with an
exponential backoff. The server refuses to start until 'setup' has
provisioned the server secret and the Command Center API tokens.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveConfigPath, rootCmd.Version)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
}
