package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Commvault/commvault-mcp-server/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// UserTools exposes CommCell user and user-group management.
type UserTools struct {
	client APIClient
}

// NewUserTools creates the user management toolset.
func NewUserTools(client APIClient) *UserTools {
	return &UserTools{client: client}
}

// Register registers the user tools on the MCP server.
func (t *UserTools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("get_users_list",
		mcp.WithDescription("Gets the list of users in the CommCell."),
	), t.handleGetUsersList)

	s.AddTool(mcp.NewTool("get_user_properties",
		mcp.WithDescription("Gets properties for a given user id."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The user id to retrieve properties for."),
		),
	), t.handleGetUserProperties)

	s.AddTool(mcp.NewTool("set_user_enabled",
		mcp.WithDescription("Enables or disables a user with the given user id based on the 'enabled' flag."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The user id to enable or disable."),
		),
		mcp.WithBoolean("enabled",
			mcp.Required(),
			mcp.Description("Set to true to enable the user, false to disable."),
		),
	), t.handleSetUserEnabled)

	s.AddTool(mcp.NewTool("get_user_groups_list",
		mcp.WithDescription("Gets the list of user groups in the CommCell."),
	), t.handleGetUserGroupsList)

	s.AddTool(mcp.NewTool("get_user_group_properties",
		mcp.WithDescription("Gets properties for a given user group id."),
		mcp.WithString("user_group_id",
			mcp.Required(),
			mcp.Description("The user group id to retrieve properties for."),
		),
	), t.handleGetUserGroupProperties)

	s.AddTool(mcp.NewTool("get_associated_entities_for_user_or_group",
		mcp.WithDescription("Gets the associated entities (roles and permissions for each entity) for a given user or user group id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The user or user group id to retrieve associated entities for."),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Specify 'user' for user id or 'usergroup' for user group id."),
		),
	), t.handleGetAssociatedEntities)

	s.AddTool(mcp.NewTool("view_entity_permissions",
		mcp.WithDescription("Retrieves permissions the user has for a specific entity type and ID."),
		mcp.WithString("entity_type",
			mcp.Required(),
			mcp.Description("The type of entity to view permissions for. Valid values are: COMMCELL_ENTITY, CLIENT_ENTITY, INSTANCE_ENTITY, BACKUPSET_ENTITY, SUBCLIENT_ENTITY, CLIENT_GROUP_ENTITY, USER_ENTITY, USERGROUP_ENTITY, LIBRARY_ENTITY, STORAGE_POLICY_ENTITY, STORAGE_POLICY_COPY_ENTITY, SUBCLIENT_POLICY_ENTITY."),
		),
		mcp.WithString("entity_id",
			mcp.Required(),
			mcp.Description("The ID of the entity to view permissions for."),
		),
	), t.handleViewEntityPermissions)

	s.AddTool(mcp.NewTool("get_roles_list",
		mcp.WithDescription("Gets the list of roles in the CommCell."),
	), t.handleGetRolesList)

	s.AddTool(mcp.NewTool("get_my_user_info",
		mcp.WithDescription("Gets the information about the current user."),
	), t.handleGetMyUserInfo)
}

func (t *UserTools) handleGetUsersList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response, err := t.client.Get(ctx, "v4/user")
	if err != nil {
		logging.Error("Tools", err, "Error retrieving user list")
		return toolError("retrieving user list", err), nil
	}
	return jsonResult(filterUsersResponse(response))
}

func (t *UserTools) handleGetUserProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response, err := t.client.Get(ctx, "v4/user/"+userID)
	if err != nil {
		logging.Error("Tools", err, "Error retrieving user properties")
		return toolError("retrieving user properties", err), nil
	}
	return jsonResult(response)
}

func (t *UserTools) handleSetUserEnabled(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	enabled, err := request.RequireBool("enabled")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	action := "disable"
	if enabled {
		action = "enable"
	}

	response, err := t.client.Put(ctx, fmt.Sprintf("user/%s/%s", userID, action), nil)
	if err != nil {
		logging.Error("Tools", err, "Error setting user enabled state")
		return toolError(action+"ing user", err), nil
	}

	// The user API reports per-entity outcomes in a response array.
	if entries := asSlice(response["response"]); len(entries) > 0 {
		entry := asMap(entries[0])
		if code, ok := entry["errorCode"].(float64); ok && code == 0 {
			return jsonResult(map[string]string{"message": fmt.Sprintf("User %sd successfully.", action)})
		}
		message := toString(entry["errorMessage"])
		if message == "" {
			message = "Unknown error occurred."
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s user: %s", action, message)), nil
	}
	return jsonResult(response)
}

func (t *UserTools) handleGetUserGroupsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response, err := t.client.Get(ctx, "v4/usergroup")
	if err != nil {
		logging.Error("Tools", err, "Error retrieving user group list")
		return toolError("retrieving user group list", err), nil
	}
	return jsonResult(filterUserGroupsResponse(response))
}

func (t *UserTools) handleGetUserGroupProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, err := request.RequireString("user_group_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response, err := t.client.Get(ctx, "v4/usergroup/"+groupID)
	if err != nil {
		logging.Error("Tools", err, "Error retrieving user group properties")
		return toolError("retrieving user group properties", err), nil
	}
	return jsonResult(response)
}

func (t *UserTools) handleGetAssociatedEntities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entityType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response, err := t.client.Get(ctx, fmt.Sprintf("%s/%s/security", strings.ToLower(entityType), id))
	if err != nil {
		logging.Error("Tools", err, "Error retrieving associated entities for %s %s", entityType, id)
		return toolError("retrieving associated entities", err), nil
	}
	return jsonResult(filterSecurityAssociationsResponse(response))
}

func (t *UserTools) handleViewEntityPermissions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entityType, err := request.RequireString("entity_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entityID, err := request.RequireString("entity_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response, err := t.client.Get(ctx, fmt.Sprintf("Security/%s/%s/Permissions", entityType, entityID))
	if err != nil {
		logging.Error("Tools", err, "Error retrieving permissions for entity %s with ID %s", entityType, entityID)
		return toolError("retrieving entity permissions", err), nil
	}
	return jsonResult(response)
}

func (t *UserTools) handleGetRolesList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response, err := t.client.Get(ctx, "v4/role")
	if err != nil {
		logging.Error("Tools", err, "Error retrieving roles list")
		return toolError("retrieving roles list", err), nil
	}
	return jsonResult(response)
}

func (t *UserTools) handleGetMyUserInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response, err := t.client.Get(ctx, "v2/whoami")
	if err != nil {
		logging.Error("Tools", err, "Error retrieving current user info")
		return toolError("retrieving current user info", err), nil
	}
	return jsonResult(response)
}
