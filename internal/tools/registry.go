package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// APIClient is the slice of the Command Center client the toolsets need.
// Satisfied by *commcell.Client; tests substitute a fake.
type APIClient interface {
	Get(ctx context.Context, endpoint string) (map[string]interface{}, error)
	Post(ctx context.Context, endpoint string, body interface{}) (map[string]interface{}, error)
	Put(ctx context.Context, endpoint string, body interface{}) (map[string]interface{}, error)
	PutXML(ctx context.Context, endpoint string, xmlBody string) (map[string]interface{}, error)
}

// RegisterAll registers every toolset on the MCP server.
func RegisterAll(s *server.MCPServer, client APIClient) {
	NewUserTools(client).Register(s)
	NewWorkflowTools(client).Register(s)
	NewDocuSignTools(client).Register(s)
	NewHypervisorTools(client).Register(s)
}

// jsonResult marshals v as indented JSON for the agent. Marshal failures
// become tool errors; v always originates from decoded JSON, so in practice
// this cannot fail.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError wraps an API failure as a tool error the agent can read.
func toolError(action string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Error %s: %v", action, err))
}
