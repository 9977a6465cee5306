// Package app bootstraps and runs the server.
//
// Bootstrap wires the pieces together in dependency order: logging, file
// configuration, the OS keyring secret store, the Command Center client, the
// authentication gate and finally the MCP transport server. Run blocks until
// the process receives an interrupt or a component fails.
package app
