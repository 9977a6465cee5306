package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Commvault/commvault-mcp-server/internal/auth"
	"github.com/Commvault/commvault-mcp-server/internal/config"
	"github.com/Commvault/commvault-mcp-server/internal/secrets"
	"github.com/Commvault/commvault-mcp-server/pkg/logging"
)

func TestMain(m *testing.M) {
	logging.InitForCLI(logging.LevelError, io.Discard)
	os.Exit(m.Run())
}

type stubAPIClient struct{}

func (stubAPIClient) Get(ctx context.Context, endpoint string) (map[string]interface{}, error) {
	return nil, errors.New("not wired")
}

func (stubAPIClient) Post(ctx context.Context, endpoint string, body interface{}) (map[string]interface{}, error) {
	return nil, errors.New("not wired")
}

func (stubAPIClient) Put(ctx context.Context, endpoint string, body interface{}) (map[string]interface{}, error) {
	return nil, errors.New("not wired")
}

func (stubAPIClient) PutXML(ctx context.Context, endpoint string, xmlBody string) (map[string]interface{}, error) {
	return nil, errors.New("not wired")
}

const testSecret = "server-secret-for-transport-tests"

func newTestServer(t *testing.T, transport string) *Server {
	t.Helper()

	store := secrets.NewMemory()
	require.NoError(t, store.Set(secrets.KeyServerSecret, testSecret))
	require.NoError(t, store.Set(secrets.KeyServerSecretExpiry, "9999999999"))

	gate := auth.NewGate(
		auth.NewClientIdentifier(auth.NewTrustedProxies("")),
		auth.NewFailureLimiter(auth.DefaultFailureLimiterConfig()),
		store,
	)

	cfg := config.ServerConfig{
		Transport: transport,
		Host:      "localhost",
		Port:      0,
		Path:      "/mcp",
	}
	return New(cfg, stubAPIClient{}, gate, "test")
}

func postMCP(t *testing.T, url, bearer string) *http.Response {
	t.Helper()

	body := `{"jsonrpc":"2.0","id":1,"method":"ping"}`
	request, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json, text/event-stream")
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	return response
}

func TestHandler_MissingCredentialRejected(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, config.TransportStreamableHTTP).Handler())
	defer ts.Close()

	response := postMCP(t, ts.URL+"/mcp", "")
	defer response.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

func TestHandler_InvalidCredentialRejected(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, config.TransportStreamableHTTP).Handler())
	defer ts.Close()

	response := postMCP(t, ts.URL+"/mcp", "wrong-secret")
	defer response.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

func TestHandler_ValidCredentialReachesTransport(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, config.TransportStreamableHTTP).Handler())
	defer ts.Close()

	response := postMCP(t, ts.URL+"/mcp", testSecret)
	defer response.Body.Close()
	assert.NotEqual(t, http.StatusUnauthorized, response.StatusCode)
	assert.NotEqual(t, http.StatusTooManyRequests, response.StatusCode)
}

func TestHandler_RepeatedFailuresThrottled(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, config.TransportStreamableHTTP).Handler())
	defer ts.Close()

	first := postMCP(t, ts.URL+"/mcp", "wrong-secret")
	first.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, first.StatusCode)

	second := postMCP(t, ts.URL+"/mcp", "wrong-secret")
	defer second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.NotEmpty(t, second.Header.Get("Retry-After"))
}

func TestHandler_SSETransportGated(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, config.TransportSSE).Handler())
	defer ts.Close()

	response, err := http.Get(ts.URL + "/sse")
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		transport string
		want      string
	}{
		{transport: config.TransportStreamableHTTP, want: "/mcp"},
		{transport: config.TransportSSE, want: "/sse"},
		{transport: config.TransportStdio, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			assert.Equal(t, tt.want, newTestServer(t, tt.transport).Endpoint())
		})
	}
}
