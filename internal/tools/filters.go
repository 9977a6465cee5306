package tools

import (
	"strings"

	pkgstrings "github.com/Commvault/commvault-mcp-server/pkg/strings"
)

// Response filtering helpers. Command Center payloads are large and mostly
// irrelevant to an agent; each filter keeps the identifying fields and drops
// the rest.

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// filterUsersResponse reduces a v4/user listing to name, id and state.
func filterUsersResponse(response map[string]interface{}) map[string]interface{} {
	var filtered []map[string]interface{}
	for _, item := range asSlice(response["users"]) {
		user := asMap(item)
		if user == nil {
			continue
		}
		filtered = append(filtered, map[string]interface{}{
			"userName": user["name"],
			"userId":   user["id"],
			"email":    user["email"],
			"enabled":  user["enabled"],
		})
	}
	return map[string]interface{}{"users": filtered}
}

// filterUserGroupsResponse reduces a v4/usergroup listing.
func filterUserGroupsResponse(response map[string]interface{}) map[string]interface{} {
	var filtered []map[string]interface{}
	for _, item := range asSlice(response["userGroups"]) {
		group := asMap(item)
		if group == nil {
			continue
		}
		filtered = append(filtered, map[string]interface{}{
			"userGroupName": group["name"],
			"userGroupId":   group["id"],
			"description":   truncated(group["description"]),
		})
	}
	return map[string]interface{}{"userGroups": filtered}
}

// filterSecurityAssociationsResponse reduces a /security payload to the
// associated entity plus its role and permission names. Entity objects carry
// a type-specific name key (clientName, userName, ...), so the first *Name
// and *Id keys present are surfaced as entityName and entityId.
func filterSecurityAssociationsResponse(response map[string]interface{}) map[string]interface{} {
	var filtered []map[string]interface{}
	for _, item := range asSlice(response["securityAssociations"]) {
		assoc := asMap(item)
		if assoc == nil {
			continue
		}

		entry := map[string]interface{}{}
		if entities := asSlice(asMap(assoc["entityAssociated"])["entity"]); len(entities) > 0 {
			entity := asMap(entities[0])
			for key, value := range entity {
				switch {
				case strings.HasSuffix(key, "Name"):
					entry["entityName"] = value
				case strings.HasSuffix(key, "Id"):
					entry["entityId"] = value
				}
			}
		}

		var roles []string
		var permissions []string
		for _, a := range asSlice(asMap(assoc["securityAssociations"])["associations"]) {
			properties := asMap(asMap(a)["properties"])
			if name := toString(asMap(properties["role"])["roleName"]); name != "" {
				roles = append(roles, name)
			}
			for _, p := range asSlice(asMap(properties["categoryPermission"])["categoriesPermissionList"]) {
				if name := toString(asMap(p)["permissionName"]); name != "" {
					permissions = append(permissions, name)
				}
			}
		}
		if len(roles) > 0 {
			entry["roles"] = roles
		}
		if len(permissions) > 0 {
			entry["permissions"] = permissions
		}

		filtered = append(filtered, entry)
	}
	return map[string]interface{}{"associations": filtered}
}

// filterHypervisorListResponse reduces a V4/Hypervisor listing to the client
// and instance identifiers.
func filterHypervisorListResponse(response map[string]interface{}) map[string]interface{} {
	var filtered []map[string]interface{}
	for _, item := range asSlice(response["Hypervisors"]) {
		hv := asMap(item)
		if hv == nil {
			continue
		}
		instance := asMap(hv["instance"])
		filtered = append(filtered, map[string]interface{}{
			"clientName":   hv["name"],
			"clientId":     hv["id"],
			"description":  truncated(hv["description"]),
			"vendor":       hv["HypervisorType"],
			"instanceId":   instance["id"],
			"instanceName": instance["name"],
		})
	}
	return map[string]interface{}{"hypervisors": filtered}
}

// formatReportDatasetResponse converts a reports-engine dataset payload
// (parallel columns and row arrays) into a list of records keyed by column
// name.
func formatReportDatasetResponse(response map[string]interface{}) map[string]interface{} {
	columns := asSlice(response["columns"])
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, toString(asMap(col)["name"]))
	}

	var records []map[string]interface{}
	for _, row := range asSlice(response["records"]) {
		values := asSlice(row)
		record := make(map[string]interface{}, len(names))
		for i, name := range names {
			if name == "" || i >= len(values) {
				continue
			}
			record[name] = values[i]
		}
		records = append(records, record)
	}

	return map[string]interface{}{
		"totalRecords": len(records),
		"records":      records,
	}
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// truncated flattens and shortens a free-text description field.
func truncated(v interface{}) string {
	return pkgstrings.TruncateDescription(toString(v), pkgstrings.DefaultDescriptionMaxLen)
}
