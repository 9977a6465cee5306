package config

// Config is the top-level configuration structure for the Commvault MCP server.
type Config struct {
	CommCell CommCellConfig `yaml:"commcell"`
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
}

// MCP transport modes supported by the server.
const (
	// TransportStreamableHTTP is the streamable HTTP transport (default).
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStdio is the standard I/O transport. The request
	// authentication gate does not apply in this mode since there is no
	// network peer.
	TransportStdio = "stdio"
)

// CommCellConfig describes how to reach the Commvault Command Center API.
type CommCellConfig struct {
	// ServerURL is the base HTTPS URL of the Command Center, e.g.
	// https://commserve.example.com. The API path suffix is appended by the
	// client.
	ServerURL string `yaml:"serverUrl"`
	// SSLVerify toggles TLS certificate verification for API calls.
	// Disabling it is only intended for lab environments with self-signed
	// certificates.
	SSLVerify bool `yaml:"sslVerify"`
}

// ServerConfig describes the MCP-facing listener.
type ServerConfig struct {
	Transport string `yaml:"transport,omitempty"` // streamable-http, sse or stdio
	Host      string `yaml:"host,omitempty"`      // Host to bind to (default: localhost)
	Port      int    `yaml:"port,omitempty"`      // Port to bind to (default: 8000)
	Path      string `yaml:"path,omitempty"`      // HTTP endpoint path (default: /mcp)
}

// AuthConfig holds the settings consumed by the request authentication gate.
type AuthConfig struct {
	// TrustedProxyIPs is a comma-separated list of proxy addresses whose
	// X-Forwarded-For header is honored for client identification. Empty
	// means no proxy is ever trusted.
	TrustedProxyIPs string `yaml:"trustedProxyIps,omitempty"`
}
