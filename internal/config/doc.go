// Package config loads and validates the Commvault MCP server configuration.
//
// Configuration is resolved in three layers, lowest precedence first:
//
//  1. Built-in defaults (GetDefaultConfig)
//  2. config.yaml in the configuration directory
//  3. Environment variables (CC_SERVER_URL, MCP_TRANSPORT_MODE, MCP_HOST,
//     MCP_PORT, MCP_PATH, TRUSTED_PROXY_IPS, SSL_VERIFY)
//
// The configuration is read once at process start. In particular the trusted
// proxy list is parsed exactly once by the auth gate; changing it requires a
// restart. This is a deliberate design choice, not a caching bug: re-parsing
// per request would put configuration parsing on the hot path of every
// authentication decision.
package config
