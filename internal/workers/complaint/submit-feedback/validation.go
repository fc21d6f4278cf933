package submitfeedback

import (
	"complaint-triage/internal/common/validation"
	"complaint-triage/internal/models"
)

func categoryNames() []string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return names
}

func priorityNames() []string {
	names := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		names[i] = string(p)
	}
	return names
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Required: []string{
			"complaintId",
			"complaintText",
			"predictedCategory",
			"predictedPriority",
			"correctCategory",
			"correctPriority",
		},
		Properties: map[string]validation.Property{
			"complaintId": {
				Type:        "integer",
				Description: "Identifier returned by complaint.classify",
				Minimum:     validation.FloatPtr(1),
			},
			"complaintText": {
				Type:        "string",
				Description: "Complaint text as it was classified",
			},
			"predictedCategory": {
				Type:        "string",
				Description: "Category the classifier assigned",
			},
			"predictedPriority": {
				Type:        "string",
				Description: "Priority the classifier assigned",
			},
			"correctCategory": {
				Type:        "string",
				Description: "Category chosen by the reviewer",
				Enum:        categoryNames(),
			},
			"correctPriority": {
				Type:        "string",
				Description: "Priority chosen by the reviewer",
				Enum:        priorityNames(),
			},
		},
		AdditionalProperties: true,
	}
}
