package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"complaintText"},
		Properties: map[string]Property{
			"complaintText": {Type: "string", MinLength: IntPtr(1), MaxLength: IntPtr(10)},
			"priority":      {Type: "string", Enum: []string{"High", "Medium", "Low"}},
			"complaintId":   {Type: "integer", Minimum: FloatPtr(1)},
			"meta": {
				Type:       "object",
				Properties: map[string]Property{"source": {Type: "string"}},
				Required:   []string{"source"},
			},
		},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		wantCode  string
		wantField string
	}{
		{
			name:      "valid",
			input:     map[string]interface{}{"complaintText": "late", "priority": "High", "complaintId": float64(3)},
			wantValid: true,
		},
		{
			name:      "missing required",
			input:     map[string]interface{}{},
			wantCode:  CodeRequired,
			wantField: "complaintText",
		},
		{
			name:      "wrong type",
			input:     map[string]interface{}{"complaintText": 12.0},
			wantCode:  CodeInvalidType,
			wantField: "complaintText",
		},
		{
			name:      "too long counts runes",
			input:     map[string]interface{}{"complaintText": "ééééééééééé"},
			wantCode:  CodeMaxLength,
			wantField: "complaintText",
		},
		{
			name:      "bad enum",
			input:     map[string]interface{}{"complaintText": "x", "priority": "Urgent"},
			wantCode:  CodeInvalidEnum,
			wantField: "priority",
		},
		{
			name:      "fractional integer",
			input:     map[string]interface{}{"complaintText": "x", "complaintId": 1.5},
			wantCode:  CodeInvalidType,
			wantField: "complaintId",
		},
		{
			name:      "below minimum",
			input:     map[string]interface{}{"complaintText": "x", "complaintId": 0},
			wantCode:  CodeBelowMinimum,
			wantField: "complaintId",
		},
		{
			name:      "extra field",
			input:     map[string]interface{}{"complaintText": "x", "foo": "bar"},
			wantCode:  CodeExtraField,
			wantField: "foo",
		},
		{
			name:      "nested required",
			input:     map[string]interface{}{"complaintText": "x", "meta": map[string]interface{}{}},
			wantCode:  CodeRequired,
			wantField: "meta.source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, testSchema())
			assert.Equal(t, tt.wantValid, result.Valid)
			if tt.wantValid {
				assert.Empty(t, result.Errors)
				return
			}
			err, ok := result.FirstError(tt.wantCode)
			require.True(t, ok, "errors: %v", result.GetErrorMessages())
			assert.Equal(t, tt.wantField, err.Field)
		})
	}
}

func TestValidationResult_Helpers(t *testing.T) {
	result := ValidateInput(map[string]interface{}{"meta": map[string]interface{}{}}, testSchema())
	require.False(t, result.Valid)

	assert.Len(t, result.GetErrorsForField("meta"), 1)
	assert.Contains(t, result.GetErrorMessages(), "complaintText: required field missing")

	_, ok := result.FirstError(CodePattern)
	assert.False(t, ok)
}

const bodySchema = `{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"complaint_id": {"type": "integer"}
	}
}`

func TestDocumentSchema_ValidateDocument(t *testing.T) {
	schema := MustCompileSchema("body", bodySchema)
	assert.Equal(t, "body", schema.Name())

	tests := []struct {
		name     string
		body     string
		valid    bool
		wantCode string
	}{
		{name: "valid", body: `{"text":"hello"}`, valid: true},
		{name: "empty object", body: `{}`, valid: true},
		{name: "wrong type", body: `{"text":42}`, wantCode: CodeInvalidType},
		{name: "not an object", body: `[1,2]`, wantCode: CodeInvalidType},
		{name: "not json", body: `{"text":`, wantCode: CodeInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := schema.ValidateDocument([]byte(tt.body))
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantCode, result.Errors[0].Code)
			}
		})
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema("broken", `{"type": 12}`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompileSchema("broken", `not json`) })
}
