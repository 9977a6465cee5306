package setup

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Commvault/commvault-mcp-server/internal/commcell"
	"github.com/Commvault/commvault-mcp-server/internal/config"
	"github.com/Commvault/commvault-mcp-server/internal/secrets"
)

// transportModes lists the selectable transports in menu order.
var transportModes = []string{
	config.TransportStreamableHTTP,
	config.TransportSSE,
	config.TransportStdio,
}

// Wizard drives the interactive setup flow.
type Wizard struct {
	store   secrets.Store
	prompts Prompter
	out     io.Writer

	// verifyTokens checks a candidate token pair against the Command
	// Center API. Replaced in tests.
	verifyTokens func(ctx context.Context, cc config.CommCellConfig, tokens secrets.APITokens) error
}

// NewWizard creates a setup wizard storing secrets in store and writing
// terminal output to out.
func NewWizard(store secrets.Store, prompts Prompter, out io.Writer) *Wizard {
	w := &Wizard{
		store:   store,
		prompts: prompts,
		out:     out,
	}
	w.verifyTokens = w.verifyAgainstCommandCenter
	return w
}

// Run walks the operator through configuration, secret generation and token
// provisioning. Existing values are offered as defaults so re-running the
// wizard is a safe way to change a single setting.
func (w *Wizard) Run(ctx context.Context, configPath string) error {
	fmt.Fprintln(w.out, text.Bold.Sprint("Commvault MCP Server setup"))
	fmt.Fprintln(w.out, "Press enter to keep the value shown in brackets.")
	fmt.Fprintln(w.out)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// A broken or incomplete config is exactly what setup fixes.
		cfg = config.GetDefaultConfig()
	}

	if err := w.collectConnection(&cfg); err != nil {
		return err
	}
	if err := w.collectTransport(&cfg); err != nil {
		return err
	}

	if err := config.WriteConfig(configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintln(w.out, text.FgGreen.Sprintf("Wrote configuration to %s.", configPath))
	fmt.Fprintln(w.out)

	secret, err := secrets.RotateServerSecret(w.store, secrets.DefaultSecretTTL)
	if err != nil {
		return err
	}
	w.printServerSecret(secret)

	if err := w.collectTokens(ctx, cfg.CommCell); err != nil {
		return err
	}

	w.printSummary(cfg, secret, configPath)
	return nil
}

func (w *Wizard) collectConnection(cfg *config.Config) error {
	for {
		raw, err := w.prompts.Ask("Command Center URL", cfg.CommCell.ServerURL)
		if err != nil {
			return err
		}
		if err := validateServerURL(raw); err != nil {
			fmt.Fprintln(w.out, text.FgRed.Sprint(err.Error()))
			continue
		}
		cfg.CommCell.ServerURL = strings.TrimSpace(raw)
		break
	}

	answer, err := w.prompts.Ask("Verify TLS certificates? (y/n)", yesNo(cfg.CommCell.SSLVerify))
	if err != nil {
		return err
	}
	cfg.CommCell.SSLVerify = parseYesNo(answer, cfg.CommCell.SSLVerify)
	if !cfg.CommCell.SSLVerify {
		fmt.Fprintln(w.out, text.FgYellow.Sprint("TLS verification disabled; only use this with self-signed lab certificates."))
	}
	return nil
}

func (w *Wizard) collectTransport(cfg *config.Config) error {
	fmt.Fprintln(w.out, "Transport mode:")
	for i, mode := range transportModes {
		fmt.Fprintf(w.out, "  %d. %s\n", i+1, mode)
	}

	defaultChoice := "1"
	for i, mode := range transportModes {
		if mode == cfg.Server.Transport {
			defaultChoice = strconv.Itoa(i + 1)
		}
	}

	for {
		choice, err := w.prompts.Ask("Select transport mode [1-3]", defaultChoice)
		if err != nil {
			return err
		}
		transport, err := transportFromChoice(choice)
		if err != nil {
			fmt.Fprintln(w.out, text.FgRed.Sprint(err.Error()))
			continue
		}
		cfg.Server.Transport = transport
		break
	}

	// The remaining settings only matter for the HTTP listeners.
	if cfg.Server.Transport == config.TransportStdio {
		return nil
	}

	host, err := w.prompts.Ask("Bind host", cfg.Server.Host)
	if err != nil {
		return err
	}
	cfg.Server.Host = host

	for {
		raw, err := w.prompts.Ask("Bind port", strconv.Itoa(cfg.Server.Port))
		if err != nil {
			return err
		}
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || port < 1 || port > 65535 {
			fmt.Fprintln(w.out, text.FgRed.Sprint("Enter a port between 1 and 65535."))
			continue
		}
		cfg.Server.Port = port
		break
	}

	for {
		path, err := w.prompts.Ask("Endpoint path", cfg.Server.Path)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(path, "/") {
			fmt.Fprintln(w.out, text.FgRed.Sprint("The endpoint path must start with /."))
			continue
		}
		cfg.Server.Path = path
		break
	}

	proxies, err := w.prompts.Ask("Trusted proxy IPs (comma-separated, blank for none)", cfg.Auth.TrustedProxyIPs)
	if err != nil {
		return err
	}
	cfg.Auth.TrustedProxyIPs = strings.TrimSpace(proxies)
	return nil
}

func (w *Wizard) printServerSecret(secret secrets.ServerSecret) {
	fmt.Fprintln(w.out, text.FgGreen.Sprint("Server secret generated and stored."))
	fmt.Fprintln(w.out, text.Bold.Sprint("Copy this secret into your MCP client configuration; it will not be shown again:"))
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  "+text.FgCyan.Sprint(secret.Value))
	fmt.Fprintln(w.out)
	fmt.Fprintf(w.out, "Clients send it as 'Authorization: Bearer <secret>'. It expires on %s.\n\n",
		secret.Expiry.Format("2006-01-02"))
}

func (w *Wizard) collectTokens(ctx context.Context, cc config.CommCellConfig) error {
	fmt.Fprintln(w.out, text.Bold.Sprint("Command Center API tokens"))
	fmt.Fprintln(w.out, "Leave blank to keep the existing token.")

	for {
		existing, _ := secrets.LoadAPITokens(w.store)

		access, err := w.prompts.AskSecret("Access token")
		if err != nil {
			return err
		}
		if access == "" {
			if existing.AccessToken == "" {
				fmt.Fprintln(w.out, text.FgRed.Sprint("An access token is required."))
				continue
			}
			fmt.Fprintln(w.out, "Keeping existing tokens.")
			return nil
		}

		refresh, err := w.prompts.AskSecret("Refresh token")
		if err != nil {
			return err
		}
		if refresh == "" {
			refresh = existing.RefreshToken
		}
		if refresh == "" {
			fmt.Fprintln(w.out, text.FgRed.Sprint("A refresh token is required."))
			continue
		}

		tokens := secrets.APITokens{AccessToken: access, RefreshToken: refresh}
		if err := w.verifyTokens(ctx, cc, tokens); err != nil {
			fmt.Fprintln(w.out, text.FgRed.Sprintf("Token validation failed: %v", err))
			retry, askErr := w.prompts.Ask("Try again? (y/n)", "y")
			if askErr != nil {
				return askErr
			}
			if parseYesNo(retry, true) {
				continue
			}
			if existing.AccessToken != "" {
				fmt.Fprintln(w.out, text.FgYellow.Sprint("Keeping existing tokens."))
				return nil
			}
			return fmt.Errorf("setup aborted: no valid Command Center tokens")
		}

		if err := secrets.SaveAPITokens(w.store, tokens); err != nil {
			return err
		}
		fmt.Fprintln(w.out, text.FgGreen.Sprint("Tokens validated and stored."))
		return nil
	}
}

// verifyAgainstCommandCenter checks the token pair by calling the whoami
// endpoint with a throwaway in-memory store.
func (w *Wizard) verifyAgainstCommandCenter(ctx context.Context, cc config.CommCellConfig, tokens secrets.APITokens) error {
	scratch := secrets.NewMemory()
	if err := secrets.SaveAPITokens(scratch, tokens); err != nil {
		return err
	}
	client, err := commcell.New(cc, scratch)
	if err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Validating tokens against Command Center..."
	s.Start()
	defer s.Stop()

	verifyCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	_, err = client.Whoami(verifyCtx)
	return err
}

func (w *Wizard) printSummary(cfg config.Config, secret secrets.ServerSecret, configPath string) {
	endpoint := "stdio"
	if cfg.Server.Transport != config.TransportStdio {
		path := cfg.Server.Path
		if cfg.Server.Transport == config.TransportSSE {
			path = "/sse"
		}
		endpoint = fmt.Sprintf("http://%s:%d%s", cfg.Server.Host, cfg.Server.Port, path)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w.out)
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Command Center", cfg.CommCell.ServerURL},
		{"Transport", cfg.Server.Transport},
		{"Endpoint", endpoint},
		{"Secret expires", secret.Expiry.Format("2006-01-02")},
		{"Config file", configPath},
	})
	fmt.Fprintln(w.out)
	t.Render()
	fmt.Fprintln(w.out, text.FgGreen.Sprint("Setup complete. Start the server with 'commvault-mcp-server serve'."))
}

// validateServerURL enforces an https Command Center base URL.
func validateServerURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("the Command Center URL is required")
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return fmt.Errorf("enter a full URL such as https://commserve.example.com")
	}
	if strings.EqualFold(u.Scheme, "http") {
		return fmt.Errorf("plain HTTP is not allowed; use an https:// URL")
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("the URL must start with https://")
	}
	return nil
}

// transportFromChoice maps a 1-based menu choice to a transport name.
func transportFromChoice(choice string) (string, error) {
	index, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil || index < 1 || index > len(transportModes) {
		return "", fmt.Errorf("invalid choice, enter 1, 2 or 3")
	}
	return transportModes[index-1], nil
}

func yesNo(v bool) string {
	if v {
		return "y"
	}
	return "n"
}

func parseYesNo(answer string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "true":
		return true
	case "n", "no", "false":
		return false
	default:
		return def
	}
}
