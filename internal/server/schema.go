// internal/server/schema.go
package server

import "checklist-engine/internal/common/validation"

func floatPtr(f float64) *float64 { return &f }

// GetExecuteSchema returns the JSON schema for the execute request body.
// Domain rules (target XOR, answer consistency) are checked by the engine;
// this only guards shape and types.
func GetExecuteSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"templateId":     {Type: "string", Description: "Checklist template to execute"},
			"groupId":        {Type: "string", Description: "Checklist group to execute"},
			"executorUserId": {Type: "string", Description: "User performing the inspection"},
			"targetType":     {Type: "string", Description: "Kind of inspected target (driver, vehicle, warehouse, ...)"},
			"targetId":       {Type: "string", Description: "Identifier of the inspected target"},
			"executionTimestamp": {
				Type:        "string",
				Description: "RFC3339 time the inspection was performed",
			},
			"notes": {Type: "string"},
			"answers": {
				Type: "array",
				Items: &validation.Property{
					Type: "object",
					Properties: map[string]validation.Property{
						"questionId": {Type: "string"},
						"approvalStatus": {
							Type: "string",
							Enum: []string{"APPROVED", "NOT_APPROVED", "INTERMEDIATE"},
						},
						"approvalValue": {Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(1)},
						"isSkipped":     {Type: "boolean"},
					},
					Required: []string{"questionId", "approvalStatus", "approvalValue"},
				},
			},
		},
		Required: []string{"executorUserId", "targetType", "targetId", "answers"},
	}
}
