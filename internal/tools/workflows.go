package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Commvault/commvault-mcp-server/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// jobsDatasetID is the reports-engine dataset that lists workflow job
// history.
const jobsDatasetID = "e8ee6af4-58d8-4444-abae-3c096e5628a4"

// WorkflowTools exposes workflow trigger, scheduling and job history.
type WorkflowTools struct {
	client APIClient
}

// NewWorkflowTools creates the workflow toolset.
func NewWorkflowTools(client APIClient) *WorkflowTools {
	return &WorkflowTools{client: client}
}

// Register registers the workflow tools on the MCP server.
func (t *WorkflowTools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("trigger_workflow",
		mcp.WithDescription("Triggers a workflow by name, importing and deploying a minimal definition first if the workflow does not exist."),
		mcp.WithString("workflow_name",
			mcp.Required(),
			mcp.Description("Name of the workflow to trigger."),
		),
	), t.handleTriggerWorkflow)

	s.AddTool(mcp.NewTool("schedule_workflow",
		mcp.WithDescription("Creates a daily or weekly schedule for an existing workflow."),
		mcp.WithString("workflow_name",
			mcp.Required(),
			mcp.Description("Name of the workflow to schedule."),
		),
		mcp.WithString("schedule_type",
			mcp.Required(),
			mcp.Description("Type of schedule to apply. Valid values are 'daily' / 'weekly'."),
		),
	), t.handleScheduleWorkflow)

	s.AddTool(mcp.NewTool("get_workflow_jobs",
		mcp.WithDescription("Gets recent completed jobs for a workflow."),
		mcp.WithString("workflow_name",
			mcp.Required(),
			mcp.Description("Name of the workflow to get jobs for."),
		),
		mcp.WithNumber("job_lookup_window",
			mcp.Description("The time window in seconds to look up jobs. For example, 86400 for the last 24 hours."),
		),
		mcp.WithNumber("limit",
			mcp.Description("The maximum number of jobs to return. Default is 50."),
		),
		mcp.WithNumber("offset",
			mcp.Description("The offset for pagination."),
		),
	), t.handleGetWorkflowJobs)
}

// findWorkflow returns the workflow id for name, or found=false if no such
// workflow exists.
func (t *WorkflowTools) findWorkflow(ctx context.Context, name string) (workflowID float64, found bool, err error) {
	response, err := t.client.Get(ctx, "Workflow")
	if err != nil {
		return 0, false, err
	}
	for _, item := range asSlice(response["container"]) {
		entity := asMap(asMap(item)["entity"])
		if entity == nil {
			continue
		}
		if toString(entity["workflowName"]) == name {
			id, _ := entity["workflowId"].(float64)
			return id, true, nil
		}
	}
	return 0, false, nil
}

// importAndDeployWorkflow imports a minimal workflow definition under name
// and deploys it, returning the deployed workflow's name.
func (t *WorkflowTools) importAndDeployWorkflow(ctx context.Context, name string) (string, error) {
	definition, err := renderWorkflowDefinition(name)
	if err != nil {
		return "", err
	}

	imported, err := t.client.PutXML(ctx, "Workflow", definition)
	if err != nil {
		return "", err
	}
	workflow := asMap(imported["workflow"])
	if workflow == nil {
		return "", fmt.Errorf("workflow creation failed")
	}
	workflowID, ok := workflow["workflowId"].(float64)
	if !ok || toString(workflow["workflowName"]) == "" || toString(workflow["GUID"]) == "" {
		return "", fmt.Errorf("workflow creation failed")
	}

	deployed, err := t.client.Post(ctx, fmt.Sprintf("Workflow/%.0f/Action/Deploy?clientId=2", workflowID), nil)
	if err != nil {
		return "", err
	}
	if toString(deployed["errorMessage"]) != "Success" {
		return "", fmt.Errorf("workflow deployment failed")
	}
	return toString(workflow["workflowName"]), nil
}

func (t *WorkflowTools) handleTriggerWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("workflow_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, found, err := t.findWorkflow(ctx, name)
	if err != nil {
		logging.Error("Tools", err, "Error checking workflow %s", name)
		return toolError("triggering workflow", err), nil
	}
	if !found {
		deployedName, err := t.importAndDeployWorkflow(ctx, name)
		if err != nil {
			logging.Error("Tools", err, "Error importing workflow %s", name)
			return toolError("triggering workflow", err), nil
		}
		name = deployedName
	}

	response, err := t.client.Post(ctx, "wapi/"+url.PathEscape(name), nil)
	if err != nil {
		logging.Error("Tools", err, "Error triggering workflow %s", name)
		return toolError("triggering workflow", err), nil
	}
	if jobID, ok := response["jobId"]; ok {
		return jsonResult(map[string]interface{}{
			"message": fmt.Sprintf("Workflow triggered successfully. Job ID: %v", jobID),
		})
	}
	return jsonResult(response)
}

func (t *WorkflowTools) handleScheduleWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("workflow_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scheduleType, err := request.RequireString("schedule_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if scheduleType != "daily" && scheduleType != "weekly" {
		return mcp.NewToolResultError("Only 'daily' and 'weekly' schedule types are supported."), nil
	}

	workflowID, found, err := t.findWorkflow(ctx, name)
	if err != nil {
		logging.Error("Tools", err, "Error checking workflow %s", name)
		return toolError("scheduling workflow", err), nil
	}
	if !found {
		return mcp.NewToolResultError("Workflow not found."), nil
	}

	var daysToRun map[string]bool
	if scheduleType == "weekly" {
		daysToRun = map[string]bool{
			"Monday": true, "Tuesday": true, "Wednesday": true,
			"Thursday": true, "Friday": true, "Saturday": true, "Sunday": true,
		}
	}
	payload := scheduleTaskPayload(workflowID, name, scheduleType, 75600, daysToRun)

	response, err := t.client.Post(ctx, "CreateTask", payload)
	if err != nil {
		logging.Error("Tools", err, "Error scheduling workflow %s", name)
		return toolError("scheduling workflow", err), nil
	}
	return jsonResult(response)
}

// scheduleTaskPayload builds the CreateTask request for a workflow schedule.
// The scheduler's frequency encoding: 4 = daily, 8 = weekly with a day
// bitmask carried in daysToRun.
func scheduleTaskPayload(workflowID float64, workflowName, scheduleType string, startTime int, daysToRun map[string]bool) map[string]interface{} {
	scheduleName := fmt.Sprintf("%s-%s-schedule", workflowName, scheduleType)

	pattern := map[string]interface{}{
		"name":                   scheduleName,
		"freq_type":              4,
		"freq_interval":          1,
		"freq_recurrence_factor": 1,
		"active_start_time":      startTime,
		"timeZone":               map[string]interface{}{"TimeZoneID": 1000},
		"description":            fmt.Sprintf("%s schedule for %s", scheduleType, workflowName),
	}
	if scheduleType == "weekly" {
		pattern["freq_type"] = 8
		pattern["freq_interval"] = 127
		pattern["daysToRun"] = daysToRun
	}

	return map[string]interface{}{
		"taskInfo": map[string]interface{}{
			"subTasks": []interface{}{
				map[string]interface{}{
					"subTask": map[string]interface{}{
						"subTaskName":   scheduleName,
						"subTaskType":   1,
						"operationType": 2001,
						"flags":         0,
					},
					"pattern": pattern,
					"options": map[string]interface{}{
						"workflowJobOptions": "<inputs></inputs>",
					},
				},
			},
			"task": map[string]interface{}{
				"taskType":      2,
				"initiatedFrom": 1,
				"policyType":    0,
			},
			"associations": []interface{}{
				map[string]interface{}{"workflowId": workflowID},
			},
		},
	}
}

// jobRecordFields are the dataset columns worth surfacing to the agent.
var jobRecordFields = []string{
	"jobId", "status", "percentComplete", "jobStartTime",
	"jobEndTime", "jobElapsedTime", "pendingReason",
}

// queryWorkflowJobs fetches recent completed jobs for a workflow id from the
// reports engine and reduces the records to jobRecordFields.
func (t *WorkflowTools) queryWorkflowJobs(ctx context.Context, workflowID float64, lookupWindow, limit, offset int) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("offset", fmt.Sprintf("%d", offset))
	query.Set("orderby", "[jobEndTime]DESC")
	query.Set("parameter.hideAdminJobs", "0")
	query.Set("parameter.jobCategory", "3")
	query.Set("parameter.showOnlyLaptopJobs", "0")
	query.Set("parameter.statusList[]", `Completed,""Completed w/ one or more errors"",""Completed w/ one or more warnings""`)
	query.Set("parameter.completedJobLookupTime", fmt.Sprintf("%d", lookupWindow))
	query.Set("parameter.workFlows", fmt.Sprintf("%.0f", workflowID))
	query.Set("parameter.jobTypes", "90")

	endpoint := fmt.Sprintf("cr/reportsplusengine/datasets/%s/data?%s", jobsDatasetID, query.Encode())
	response, err := t.client.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	formatted := formatReportDatasetResponse(response)
	// Keep only the fields an agent needs to reason about job health.
	var filtered []map[string]interface{}
	for _, item := range formatted["records"].([]map[string]interface{}) {
		record := make(map[string]interface{})
		for _, field := range jobRecordFields {
			if value, ok := item[field]; ok && value != nil {
				record[field] = value
			}
		}
		filtered = append(filtered, record)
	}
	formatted["records"] = filtered
	return formatted, nil
}

func (t *WorkflowTools) handleGetWorkflowJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("workflow_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lookupWindow := request.GetInt("job_lookup_window", 86400)
	limit := request.GetInt("limit", 50)
	offset := request.GetInt("offset", 0)

	workflowID, found, err := t.findWorkflow(ctx, name)
	if err != nil {
		logging.Error("Tools", err, "Error checking workflow %s", name)
		return toolError("retrieving workflow jobs", err), nil
	}
	if !found {
		return mcp.NewToolResultError("Workflow not found."), nil
	}

	formatted, err := t.queryWorkflowJobs(ctx, workflowID, lookupWindow, limit, offset)
	if err != nil {
		logging.Error("Tools", err, "Error retrieving jobs for workflow %s", name)
		return toolError("retrieving workflow jobs", err), nil
	}
	return jsonResult(formatted)
}
