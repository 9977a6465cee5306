package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Commvault/commvault-mcp-server/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// docuSignWorkflowName is the workflow the DocuSign backup integration
// deploys during vault setup. The tools here only operate on it; if it is
// absent the backup has not been configured.
const docuSignWorkflowName = "Backup Docusign"

var weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DocuSignTools exposes the DocuSign backup workflow: trigger, schedule and
// job history.
type DocuSignTools struct {
	workflows *WorkflowTools
}

// NewDocuSignTools creates the DocuSign backup toolset.
func NewDocuSignTools(client APIClient) *DocuSignTools {
	return &DocuSignTools{workflows: NewWorkflowTools(client)}
}

// Register registers the DocuSign backup tools on the MCP server.
func (t *DocuSignTools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("trigger_docusign_backup",
		mcp.WithDescription("Triggers a workflow to backup Docusign documents. Assume that the user has already set up the backup vault. If it does not exist, an error will be raised."),
	), t.handleTriggerBackup)

	s.AddTool(mcp.NewTool("schedule_docusign_backup",
		mcp.WithDescription("Schedules the Docusign backup workflow to run daily or weekly. Ask the user if they want to schedule it before running."),
		mcp.WithString("schedule_type",
			mcp.Description("Type of schedule to create. Options are 'daily' or 'weekly'. Default is 'daily'."),
		),
		mcp.WithString("time",
			mcp.Description("Time to run the backup job. 24 Hour Format: HH:MM. Default is 18:00."),
		),
		mcp.WithString("day_of_week",
			mcp.Description("Day of the week to run the backup job if the schedule type is 'weekly'. Default is 'Sunday'. Title case is used for days."),
		),
	), t.handleScheduleBackup)

	s.AddTool(mcp.NewTool("get_docusign_backup_jobs",
		mcp.WithDescription("Retrieves the list of Docusign backup jobs."),
		mcp.WithNumber("job_lookup_window",
			mcp.Description("The time window in seconds to look up jobs. For example, 86400 for the last 24 hours."),
		),
		mcp.WithNumber("limit",
			mcp.Description("The maximum number of jobs to return. Default is 50."),
		),
		mcp.WithNumber("offset",
			mcp.Description("The offset for pagination."),
		),
	), t.handleGetBackupJobs)
}

func (t *DocuSignTools) handleTriggerBackup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, found, err := t.workflows.findWorkflow(ctx, docuSignWorkflowName)
	if err != nil {
		logging.Error("Tools", err, "Error checking workflow %s", docuSignWorkflowName)
		return toolError("triggering Docusign backup", err), nil
	}
	if !found {
		return mcp.NewToolResultError("Docusign backup is not configured. Please setup a vault to run backups."), nil
	}

	response, err := t.workflows.client.Post(ctx, "wapi/"+url.PathEscape(docuSignWorkflowName), nil)
	if err != nil {
		logging.Error("Tools", err, "Error triggering workflow %s", docuSignWorkflowName)
		return toolError("triggering Docusign backup", err), nil
	}
	if jobID, ok := response["jobId"]; ok {
		return jsonResult(map[string]interface{}{
			"message": fmt.Sprintf("Backup triggered successfully. Job ID: %v", jobID),
		})
	}
	return jsonResult(response)
}

func (t *DocuSignTools) handleScheduleBackup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scheduleType := request.GetString("schedule_type", "daily")
	if scheduleType != "daily" && scheduleType != "weekly" {
		return mcp.NewToolResultError("Only 'daily' and 'weekly' schedule types are supported."), nil
	}

	startTime, err := parseClockTime(request.GetString("time", "18:00"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var daysToRun map[string]bool
	if scheduleType == "weekly" {
		dayOfWeek := request.GetString("day_of_week", "Sunday")
		daysToRun = map[string]bool{}
		known := false
		for _, day := range weekdays {
			daysToRun[day] = day == dayOfWeek
			known = known || day == dayOfWeek
		}
		if !known {
			return mcp.NewToolResultError("Unknown day of week. Use title case, for example 'Sunday'."), nil
		}
	}

	workflowID, found, err := t.workflows.findWorkflow(ctx, docuSignWorkflowName)
	if err != nil {
		logging.Error("Tools", err, "Error checking workflow %s", docuSignWorkflowName)
		return toolError("scheduling Docusign backup", err), nil
	}
	if !found {
		return mcp.NewToolResultError("Workflow not found."), nil
	}

	payload := scheduleTaskPayload(workflowID, docuSignWorkflowName, scheduleType, startTime, daysToRun)
	response, err := t.workflows.client.Post(ctx, "CreateTask", payload)
	if err != nil {
		logging.Error("Tools", err, "Error scheduling workflow %s", docuSignWorkflowName)
		return toolError("scheduling Docusign backup", err), nil
	}
	if taskID, ok := response["taskId"]; ok {
		return jsonResult(map[string]interface{}{
			"message": fmt.Sprintf("Schedule created successfully. Task ID: %v", taskID),
		})
	}
	return jsonResult(response)
}

func (t *DocuSignTools) handleGetBackupJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lookupWindow := request.GetInt("job_lookup_window", 86400)
	limit := request.GetInt("limit", 50)
	offset := request.GetInt("offset", 0)

	workflowID, found, err := t.workflows.findWorkflow(ctx, docuSignWorkflowName)
	if err != nil {
		logging.Error("Tools", err, "Error checking workflow %s", docuSignWorkflowName)
		return toolError("retrieving Docusign backup jobs", err), nil
	}
	if !found {
		return mcp.NewToolResultError("Workflow not found."), nil
	}

	formatted, err := t.workflows.queryWorkflowJobs(ctx, workflowID, lookupWindow, limit, offset)
	if err != nil {
		logging.Error("Tools", err, "Error retrieving jobs for workflow %s", docuSignWorkflowName)
		return toolError("retrieving Docusign backup jobs", err), nil
	}
	return jsonResult(formatted)
}

// parseClockTime converts a 24-hour HH:MM string into seconds after
// midnight, the scheduler's active_start_time encoding.
func parseClockTime(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("time must be in 24-hour HH:MM format")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("time must be in 24-hour HH:MM format")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("time must be in 24-hour HH:MM format")
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time must be between 00:00 and 23:59")
	}
	return hour*3600 + minute*60, nil
}
