package setup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Commvault/commvault-mcp-server/internal/config"
	"github.com/Commvault/commvault-mcp-server/internal/secrets"
)

// scriptedPrompter replays canned answers in order. Empty answers take the
// offered default, mirroring a user pressing enter.
type scriptedPrompter struct {
	answers []string
	secrets []string
}

func (p *scriptedPrompter) Ask(prompt, def string) (string, error) {
	if len(p.answers) == 0 {
		return "", fmt.Errorf("no scripted answer for prompt %q", prompt)
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (p *scriptedPrompter) AskSecret(prompt string) (string, error) {
	if len(p.secrets) == 0 {
		return "", fmt.Errorf("no scripted secret for prompt %q", prompt)
	}
	secret := p.secrets[0]
	p.secrets = p.secrets[1:]
	return secret, nil
}

func TestValidateServerURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https accepted", url: "https://commserve.example.com"},
		{name: "https with port", url: "https://commserve.example.com:8443"},
		{name: "empty rejected", url: "", wantErr: true},
		{name: "http rejected", url: "http://commserve.example.com", wantErr: true},
		{name: "bare host rejected", url: "commserve.example.com", wantErr: true},
		{name: "other scheme rejected", url: "ftp://commserve.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateServerURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransportFromChoice(t *testing.T) {
	transport, err := transportFromChoice("1")
	require.NoError(t, err)
	assert.Equal(t, config.TransportStreamableHTTP, transport)

	transport, err = transportFromChoice("3")
	require.NoError(t, err)
	assert.Equal(t, config.TransportStdio, transport)

	_, err = transportFromChoice("4")
	assert.Error(t, err)
	_, err = transportFromChoice("x")
	assert.Error(t, err)
}

func TestParseYesNo(t *testing.T) {
	assert.True(t, parseYesNo("y", false))
	assert.True(t, parseYesNo("YES", false))
	assert.False(t, parseYesNo("n", true))
	assert.True(t, parseYesNo("gibberish", true))
	assert.False(t, parseYesNo("", false))
}

func TestWizardRun(t *testing.T) {
	configPath := t.TempDir()
	store := secrets.NewMemory()

	prompter := &scriptedPrompter{
		answers: []string{
			"https://commserve.example.com", // server URL
			"y",                             // TLS verify
			"1",                             // streamable-http
			"0.0.0.0",                       // host
			"9000",                          // port
			"",                              // path, keep default
			"10.0.0.1",                      // trusted proxies
		},
		secrets: []string{"access-token", "refresh-token"},
	}

	var out bytes.Buffer
	wizard := NewWizard(store, prompter, &out)
	var verified secrets.APITokens
	wizard.verifyTokens = func(ctx context.Context, cc config.CommCellConfig, tokens secrets.APITokens) error {
		verified = tokens
		return nil
	}

	require.NoError(t, wizard.Run(context.Background(), configPath))

	// Config was written with the answers.
	written, err := os.ReadFile(filepath.Join(configPath, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "https://commserve.example.com")
	assert.Contains(t, string(written), "0.0.0.0")
	assert.Contains(t, string(written), "10.0.0.1")

	// Server secret was generated, stored and printed once.
	secret, err := secrets.LoadServerSecret(store)
	require.NoError(t, err)
	assert.Len(t, secret.Value, 43)
	assert.Contains(t, out.String(), secret.Value)

	// Tokens were validated and stored.
	assert.Equal(t, "access-token", verified.AccessToken)
	tokens, err := secrets.LoadAPITokens(store)
	require.NoError(t, err)
	assert.Equal(t, "access-token", tokens.AccessToken)
	assert.Equal(t, "refresh-token", tokens.RefreshToken)
}

func TestWizardRun_StdioSkipsListenerPrompts(t *testing.T) {
	configPath := t.TempDir()
	store := secrets.NewMemory()

	prompter := &scriptedPrompter{
		answers: []string{
			"https://commserve.example.com",
			"y",
			"3", // stdio
		},
		secrets: []string{"access-token", "refresh-token"},
	}

	var out bytes.Buffer
	wizard := NewWizard(store, prompter, &out)
	wizard.verifyTokens = func(ctx context.Context, cc config.CommCellConfig, tokens secrets.APITokens) error {
		return nil
	}

	require.NoError(t, wizard.Run(context.Background(), configPath))
	assert.Empty(t, prompter.answers, "stdio setup should not prompt for listener settings")

	written, err := os.ReadFile(filepath.Join(configPath, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "stdio")
}

func TestWizardRun_InvalidURLReprompted(t *testing.T) {
	configPath := t.TempDir()
	store := secrets.NewMemory()

	prompter := &scriptedPrompter{
		answers: []string{
			"http://insecure.example.com", // rejected
			"https://commserve.example.com",
			"y",
			"3",
		},
		secrets: []string{"access-token", "refresh-token"},
	}

	var out bytes.Buffer
	wizard := NewWizard(store, prompter, &out)
	wizard.verifyTokens = func(ctx context.Context, cc config.CommCellConfig, tokens secrets.APITokens) error {
		return nil
	}

	require.NoError(t, wizard.Run(context.Background(), configPath))
	assert.Contains(t, out.String(), "https://")
}

func TestWizardRun_TokenValidationRetry(t *testing.T) {
	configPath := t.TempDir()
	store := secrets.NewMemory()

	prompter := &scriptedPrompter{
		answers: []string{
			"https://commserve.example.com",
			"y",
			"3",
			"y", // retry after failed validation
		},
		secrets: []string{
			"bad-token", "bad-refresh",
			"good-token", "good-refresh",
		},
	}

	var out bytes.Buffer
	wizard := NewWizard(store, prompter, &out)
	attempts := 0
	wizard.verifyTokens = func(ctx context.Context, cc config.CommCellConfig, tokens secrets.APITokens) error {
		attempts++
		if tokens.AccessToken == "bad-token" {
			return fmt.Errorf("whoami request failed: 401")
		}
		return nil
	}

	require.NoError(t, wizard.Run(context.Background(), configPath))
	assert.Equal(t, 2, attempts)

	tokens, err := secrets.LoadAPITokens(store)
	require.NoError(t, err)
	assert.Equal(t, "good-token", tokens.AccessToken)
}

func TestWizardRun_TokenValidationAbortWithoutExisting(t *testing.T) {
	configPath := t.TempDir()
	store := secrets.NewMemory()

	prompter := &scriptedPrompter{
		answers: []string{
			"https://commserve.example.com",
			"y",
			"3",
			"n", // give up after failed validation
		},
		secrets: []string{"bad-token", "bad-refresh"},
	}

	var out bytes.Buffer
	wizard := NewWizard(store, prompter, &out)
	wizard.verifyTokens = func(ctx context.Context, cc config.CommCellConfig, tokens secrets.APITokens) error {
		return fmt.Errorf("whoami request failed: 401")
	}

	err := wizard.Run(context.Background(), configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup aborted")
}

func TestWizardRun_KeepsExistingTokens(t *testing.T) {
	configPath := t.TempDir()
	store := secrets.NewMemory()
	require.NoError(t, secrets.SaveAPITokens(store, secrets.APITokens{
		AccessToken:  "existing-access",
		RefreshToken: "existing-refresh",
	}))

	prompter := &scriptedPrompter{
		answers: []string{
			"https://commserve.example.com",
			"y",
			"3",
		},
		secrets: []string{""}, // blank keeps existing
	}

	var out bytes.Buffer
	wizard := NewWizard(store, prompter, &out)
	wizard.verifyTokens = func(ctx context.Context, cc config.CommCellConfig, tokens secrets.APITokens) error {
		t.Fatal("kept tokens should not be re-validated")
		return nil
	}

	require.NoError(t, wizard.Run(context.Background(), configPath))

	tokens, err := secrets.LoadAPITokens(store)
	require.NoError(t, err)
	assert.Equal(t, "existing-access", tokens.AccessToken)
}
