package classifycomplaint

import "complaint-triage/internal/common/validation"

// GetInputSchema only checks shape. Emptiness and length are enforced by the
// complaint service so workers and HTTP report the same messages.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"complaintText"},
		Properties: map[string]validation.Property{
			"complaintText": {
				Type:        "string",
				Description: "Raw complaint text as submitted by the customer",
			},
		},
		AdditionalProperties: true,
	}
}
