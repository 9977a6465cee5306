// Package logging provides the structured logging system for the Commvault
// MCP server, built on Go's standard slog package.
//
// All log entries carry a subsystem identifier so that the auth gate, the
// Command Center client, the tool handlers and the server lifecycle can be
// filtered independently in log aggregation systems:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Server", "Listening on %s", addr)
//	logging.Debug("AuthGate", "Using X-Forwarded-For IP %s", ip)
//	logging.Error("CommCell", err, "Request to %s failed", endpoint)
//
// Level filtering happens at the handler, so filtered-out messages cost no
// allocation. The package is safe for concurrent use.
//
// Callers must never pass secret material (server secret, API tokens) into
// log messages; the auth gate and secret store log key names and outcomes
// only.
package logging
