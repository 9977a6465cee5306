package config

import (
	"net/url"
	"strings"
)

// Validate checks cfg for operator mistakes that would otherwise surface as
// confusing runtime failures. It returns a ValidationErrors collecting every
// problem found, or nil if the configuration is usable.
//
// The trusted proxy list is deliberately not validated here: individual
// malformed entries are skipped with a warning by the auth gate (fail-closed
// per entry) rather than rejecting the whole configuration.
func Validate(cfg *Config) error {
	verrs := &ValidationErrors{}

	if cfg.CommCell.ServerURL == "" {
		verrs.Add("commcell.serverUrl", "",
			"Command Center server URL is not set",
			"run 'commvault-mcp-server setup' or set CC_SERVER_URL")
	} else {
		u, err := url.Parse(cfg.CommCell.ServerURL)
		if err != nil || u.Host == "" {
			verrs.Add("commcell.serverUrl", cfg.CommCell.ServerURL,
				"not a valid URL",
				"use the full Command Center base URL, e.g. https://commserve.example.com")
		} else if !strings.EqualFold(u.Scheme, "https") {
			verrs.Add("commcell.serverUrl", cfg.CommCell.ServerURL,
				"plain HTTP is not allowed for the Command Center URL",
				"use an https:// URL")
		}
	}

	switch cfg.Server.Transport {
	case TransportStreamableHTTP, TransportSSE, TransportStdio:
	default:
		verrs.Add("server.transport", cfg.Server.Transport,
			"unknown transport mode",
			"use one of streamable-http, sse, stdio")
	}

	if cfg.Server.Transport != TransportStdio {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			verrs.Add("server.port", "",
				"port out of range",
				"use a port between 1 and 65535")
		}
		if !strings.HasPrefix(cfg.Server.Path, "/") {
			verrs.Add("server.path", cfg.Server.Path,
				"endpoint path must start with /",
				"use a path like /mcp")
		}
	}

	if verrs.HasErrors() {
		return verrs
	}
	return nil
}
