package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Commvault/commvault-mcp-server/internal/secrets"
)

// newSecretStore returns the secret store used by the secret subcommands.
// Overridden in tests.
var newSecretStore = func() secrets.Store {
	return secrets.NewKeyring()
}

// newSecretCmd creates the 'secret' command group for managing the server
// secret outside the full setup wizard.
func newSecretCmd() *cobra.Command {
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage the server secret MCP clients authenticate with",
		Long: `The server secret is the bearer credential MCP clients must present on
the HTTP transports. It is stored in the OS keyring and can never be read
back; if it is lost, rotate it and update the clients.`,
	}
	secretCmd.AddCommand(newSecretRotateCmd())
	secretCmd.AddCommand(newSecretExpiryCmd())
	return secretCmd
}

func newSecretRotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Generate and store a new server secret",
		Long: `Replaces the server secret with a freshly generated one, valid for 90
days. The previous secret stops working immediately; every connected MCP
client must be reconfigured with the new value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := secrets.RotateServerSecret(newSecretStore(), secrets.DefaultSecretTTL)
			if err != nil {
				return fmt.Errorf("failed to rotate server secret: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "New server secret (copy it now, it will not be shown again):")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %s\n", secret.Value)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "It expires on %s.\n", secret.Expiry.Format("2006-01-02"))
			return nil
		},
	}
}

func newSecretExpiryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expiry",
		Short: "Show when the current server secret expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := secrets.LoadServerSecret(newSecretStore())
			if err != nil {
				return fmt.Errorf("failed to load server secret: %w", err)
			}

			out := cmd.OutOrStdout()
			if secret.Expired(time.Now()) {
				fmt.Fprintf(out, "The server secret expired on %s. Run 'commvault-mcp-server secret rotate'.\n",
					secret.Expiry.Format("2006-01-02"))
				return nil
			}
			remaining := int(time.Until(secret.Expiry).Hours() / 24)
			fmt.Fprintf(out, "The server secret expires on %s (%d day(s) left).\n",
				secret.Expiry.Format("2006-01-02"), remaining)
			return nil
		},
	}
}
