// Package setup implements the interactive first-run wizard.
//
// The wizard collects the Command Center connection settings, writes
// config.yaml, generates and stores the server secret, and prompts for the
// Command Center API token pair. Tokens are validated against the live API
// before they are persisted to the OS keyring. The generated server secret
// is printed exactly once; after setup it can only be replaced, never read
// back.
package setup
