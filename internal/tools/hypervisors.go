package tools

import (
	"context"

	"github.com/Commvault/commvault-mcp-server/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// HypervisorTools exposes virtualization (VSA) inventory.
type HypervisorTools struct {
	client APIClient
}

// NewHypervisorTools creates the hypervisor toolset.
func NewHypervisorTools(client APIClient) *HypervisorTools {
	return &HypervisorTools{client: client}
}

// Register registers the hypervisor tools on the MCP server.
func (t *HypervisorTools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("get_hypervisor_list",
		mcp.WithDescription("Gets the list of hypervisors."),
	), t.handleGetHypervisorList)
}

func (t *HypervisorTools) handleGetHypervisorList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response, err := t.client.Get(ctx, "V4/Hypervisor")
	if err != nil {
		logging.Error("Tools", err, "Error retrieving hypervisor list")
		return toolError("retrieving hypervisor list", err), nil
	}
	return jsonResult(filterHypervisorListResponse(response))
}
