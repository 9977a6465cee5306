// Package tools defines the MCP tool catalog exposed to LLM agents.
//
// Each toolset wraps a slice of the Command Center API (users, workflows,
// hypervisors) and registers its tools on the shared MCP server. Handlers
// filter API responses down to the fields an LLM can act on instead of
// forwarding the full Command Center payloads, and report failures as tool
// errors rather than protocol errors so the agent can read and react to
// them.
package tools
