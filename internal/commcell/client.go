package commcell

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Commvault/commvault-mcp-server/internal/config"
	"github.com/Commvault/commvault-mcp-server/internal/secrets"
	"github.com/Commvault/commvault-mcp-server/pkg/logging"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// apiBasePath is appended to the configured Command Center URL.
const apiBasePath = "commandcenter/api/"

// renewEndpoint exchanges the refresh token for a fresh access token pair.
const renewEndpoint = "ApiToken/Renew"

// Client talks to one Command Center. It is safe for concurrent use; the
// token pair is guarded because a 401-triggered renewal may race with other
// in-flight requests.
type Client struct {
	baseURL string
	store   secrets.Store
	http    *http.Client

	mu     sync.RWMutex
	tokens secrets.APITokens
}

// New builds a Client for the configured Command Center. It fails fast if
// the token pair has never been provisioned, since every API call would be
// rejected anyway; this is an operational error asking for the setup step,
// not something to surface per request.
func New(cfg config.CommCellConfig, store secrets.Store) (*Client, error) {
	tokens, err := secrets.LoadAPITokens(store)
	if err != nil {
		return nil, fmt.Errorf("Command Center tokens are not configured, run setup first: %w", err)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil // request logging is done here, with the request ID
	if !cfg.SSLVerify {
		transport := rc.HTTPClient.Transport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		rc.HTTPClient.Transport = transport
		logging.Warn("CommCell", "TLS certificate verification is disabled")
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.ServerURL, "/") + "/" + apiBasePath,
		store:   store,
		http:    rc.StandardClient(),
		tokens:  tokens,
	}, nil
}

// Get performs a GET request against the API endpoint (relative to the API
// base, e.g. "v4/user").
func (c *Client) Get(ctx context.Context, endpoint string) (map[string]interface{}, error) {
	return c.doJSON(ctx, http.MethodGet, endpoint, nil)
}

// Post performs a POST request with a JSON body (may be nil).
func (c *Client) Post(ctx context.Context, endpoint string, body interface{}) (map[string]interface{}, error) {
	return c.doJSON(ctx, http.MethodPost, endpoint, body)
}

// Put performs a PUT request with a JSON body (may be nil).
func (c *Client) Put(ctx context.Context, endpoint string, body interface{}) (map[string]interface{}, error) {
	return c.doJSON(ctx, http.MethodPut, endpoint, body)
}

// PutXML performs a PUT request with a raw XML body. Workflow definitions
// are imported this way.
func (c *Client) PutXML(ctx context.Context, endpoint string, xmlBody string) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodPut, endpoint, "application/xml", []byte(xmlBody))
}

// Whoami validates the current token pair against the API. Used by the
// setup wizard and at server startup.
func (c *Client) Whoami(ctx context.Context) (map[string]interface{}, error) {
	return c.Get(ctx, "v2/whoami")
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body interface{}) (map[string]interface{}, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body for %s: %w", endpoint, err)
		}
	}
	return c.do(ctx, method, endpoint, "application/json", payload)
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body []byte) (map[string]interface{}, error) {
	requestID := uuid.NewString()

	resp, err := c.send(ctx, method, endpoint, contentType, body, requestID)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Drain before retrying so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		logging.Info("CommCell", "Access token rejected, renewing (request %s)", requestID)
		if err := c.renewTokens(ctx); err != nil {
			return nil, fmt.Errorf("renewing Command Center tokens: %w", err)
		}
		resp, err = c.send(ctx, method, endpoint, contentType, body, requestID)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Warn("CommCell", "Request %s to %s failed with HTTP %d", requestID, endpoint, resp.StatusCode)
		return nil, fmt.Errorf("Command Center returned HTTP %d for %s", resp.StatusCode, endpoint)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]interface{}{}, nil
	}
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, method, endpoint, contentType string, body []byte, requestID string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", endpoint, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authtoken", c.accessToken())
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	logging.Debug("CommCell", "%s %s (request %s)", method, endpoint, requestID)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	return resp, nil
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens.AccessToken
}

// renewTokens exchanges the refresh token for a new pair and persists it.
// Concurrent callers serialize here; a renewal that lost the race still
// ends up with a usable pair.
func (c *Client) renewTokens(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := json.Marshal(map[string]string{
		"accessToken":  c.tokens.AccessToken,
		"refreshToken": c.tokens.RefreshToken,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+renewEndpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token renewal returned HTTP %d", resp.StatusCode)
	}

	var renewed struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&renewed); err != nil {
		return fmt.Errorf("decoding token renewal response: %w", err)
	}
	if renewed.AccessToken == "" {
		return fmt.Errorf("token renewal response did not contain an access token")
	}

	c.tokens.AccessToken = renewed.AccessToken
	if renewed.RefreshToken != "" {
		c.tokens.RefreshToken = renewed.RefreshToken
	}
	if err := secrets.SaveAPITokens(c.store, c.tokens); err != nil {
		return fmt.Errorf("persisting renewed tokens: %w", err)
	}
	logging.Info("CommCell", "Renewed Command Center access token")
	return nil
}
