// Package server assembles the MCP server and serves it over the configured
// transport.
//
// The tool registry is shared across transports; what differs is the wire
// path. The streamable-http and sse transports bind an HTTP listener whose
// handler is wrapped by the authentication gate, so every request carries a
// bearer credential checked against the stored server secret. The stdio
// transport serves a local parent process over its own pipes and is not
// gated.
package server
