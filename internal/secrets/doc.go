// Package secrets provides the secret store abstraction used by the auth
// gate and the Command Center client.
//
// The production implementation (Keyring) stores values in the operating
// system keyring under the service name "commvault-mcp-server". A Memory
// implementation exists for tests and for environments without a keyring
// daemon.
//
// The store holds four well-known keys: the server secret presented by MCP
// clients, its expiry timestamp, and the Command Center access/refresh token
// pair. ServerSecret bundles the first two with their validity rules; the
// gate never authenticates against an absent or expired secret.
package secrets
