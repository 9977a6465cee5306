package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerDocuSignBackup(t *testing.T) {
	client := &fakeAPIClient{
		responses: map[string]map[string]interface{}{
			"GET Workflow":                workflowListing(docuSignWorkflowName, 21),
			"POST wapi/Backup%20Docusign": {"jobId": float64(4712)},
		},
	}

	result, err := NewDocuSignTools(client).handleTriggerBackup(context.Background(), callToolRequest(nil))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Contains(t, decoded["message"], "4712")
}

func TestTriggerDocuSignBackup_NotConfigured(t *testing.T) {
	client := &fakeAPIClient{
		responses: map[string]map[string]interface{}{
			"GET Workflow": {"container": []interface{}{}},
		},
	}

	result, err := NewDocuSignTools(client).handleTriggerBackup(context.Background(), callToolRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not configured")

	// A missing workflow is never imported by the trigger; setup owns that.
	for _, call := range client.calls {
		assert.NotEqual(t, "PUTXML", call.method)
	}
}

func TestScheduleDocuSignBackup(t *testing.T) {
	tests := []struct {
		name          string
		args          map[string]interface{}
		wantFreqType  int
		wantStartTime int
		wantDay       string
	}{
		{
			name:          "defaults to daily at 18:00",
			args:          nil,
			wantFreqType:  4,
			wantStartTime: 18 * 3600,
		},
		{
			name: "weekly on a single day",
			args: map[string]interface{}{
				"schedule_type": "weekly",
				"time":          "06:30",
				"day_of_week":   "Wednesday",
			},
			wantFreqType:  8,
			wantStartTime: 6*3600 + 30*60,
			wantDay:       "Wednesday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeAPIClient{
				responses: map[string]map[string]interface{}{
					"GET Workflow":    workflowListing(docuSignWorkflowName, 21),
					"POST CreateTask": {"taskId": float64(816)},
				},
			}

			result, err := NewDocuSignTools(client).handleScheduleBackup(context.Background(),
				callToolRequest(tt.args))
			require.NoError(t, err)

			decoded := decodeResult(t, result)
			assert.Contains(t, decoded["message"], "816")

			require.Len(t, client.calls, 2)
			payload := client.calls[1].body.(map[string]interface{})
			taskInfo := payload["taskInfo"].(map[string]interface{})
			subTask := taskInfo["subTasks"].([]interface{})[0].(map[string]interface{})
			pattern := subTask["pattern"].(map[string]interface{})

			assert.Equal(t, tt.wantFreqType, pattern["freq_type"])
			assert.Equal(t, tt.wantStartTime, pattern["active_start_time"])

			if tt.wantDay == "" {
				assert.NotContains(t, pattern, "daysToRun")
			} else {
				daysToRun := pattern["daysToRun"].(map[string]bool)
				for day, enabled := range daysToRun {
					assert.Equal(t, day == tt.wantDay, enabled, day)
				}
			}
		})
	}
}

func TestScheduleDocuSignBackup_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{
			name: "unknown schedule type",
			args: map[string]interface{}{"schedule_type": "hourly"},
			want: "daily",
		},
		{
			name: "malformed time",
			args: map[string]interface{}{"time": "quarter past six"},
			want: "HH:MM",
		},
		{
			name: "out of range time",
			args: map[string]interface{}{"time": "25:00"},
			want: "23:59",
		},
		{
			name: "unknown day of week",
			args: map[string]interface{}{"schedule_type": "weekly", "day_of_week": "sunday"},
			want: "day of week",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewDocuSignTools(&fakeAPIClient{}).handleScheduleBackup(
				context.Background(), callToolRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestGetDocuSignBackupJobs(t *testing.T) {
	client := &fakeAPIClient{
		responses: map[string]map[string]interface{}{
			"GET Workflow": workflowListing(docuSignWorkflowName, 21),
			"GET cr/reportsplusengine/datasets/" + jobsDatasetID + "/data": {
				"columns": []interface{}{
					map[string]interface{}{"name": "jobId"},
					map[string]interface{}{"name": "status"},
				},
				"records": []interface{}{
					[]interface{}{float64(201), "Completed"},
				},
			},
		},
	}

	result, err := NewDocuSignTools(client).handleGetBackupJobs(context.Background(),
		callToolRequest(map[string]interface{}{"limit": 5}))
	require.NoError(t, err)

	decoded := decodeResult(t, result)
	assert.Equal(t, float64(1), decoded["totalRecords"])

	require.Len(t, client.calls, 2)
	endpoint := client.calls[1].endpoint
	assert.Contains(t, endpoint, "limit=5")
	assert.Contains(t, endpoint, "parameter.workFlows=21")
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "00:00", want: 0},
		{value: "18:00", want: 64800},
		{value: "23:59", want: 23*3600 + 59*60},
		{value: "24:00", wantErr: true},
		{value: "12:60", wantErr: true},
		{value: "noon", wantErr: true},
		{value: "12", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseClockTime(tt.value)
		if tt.wantErr {
			assert.Error(t, err, tt.value)
			continue
		}
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}
