package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Commvault/commvault-mcp-server/internal/config"
	"github.com/Commvault/commvault-mcp-server/internal/setup"
)

// setupConfigPath overrides the default configuration directory.
var setupConfigPath string

// setupCmd runs the interactive first-run wizard.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively configure the server and provision credentials",
	Long: `Walks through the initial configuration: the Command Center URL, the
MCP transport, and the listener settings. Writes config.yaml, generates the
server secret clients must present, and stores the Command Center API token
pair in the OS keyring after validating it against the live API.

Re-running setup is safe; existing values are offered as defaults and the
server secret is rotated.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	configPath := setupConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	prompter, closePrompter, err := setup.NewPrompter()
	if err != nil {
		return err
	}
	defer closePrompter()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	wizard := setup.NewWizard(newSecretStore(), prompter, os.Stdout)
	return wizard.Run(ctx, configPath)
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().StringVar(&setupConfigPath, "config-path", "", "Custom configuration directory path")
}
