package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() JSONSchema {
	min := 0.0
	max := 1.0
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"name":  {Type: "string"},
			"score": {Type: "number", Minimum: &min, Maximum: &max},
			"kind":  {Type: "string", Enum: []string{"A", "B"}},
			"items": {
				Type: "array",
				Items: &Property{
					Type: "object",
					Properties: map[string]Property{
						"id":    {Type: "string"},
						"value": {Type: "number", Minimum: &min, Maximum: &max},
					},
					Required: []string{"id"},
				},
			},
		},
		Required: []string{"name"},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		wantCode  string
	}{
		{
			name:      "valid input",
			input:     map[string]interface{}{"name": "x", "score": 0.5, "kind": "A"},
			wantValid: true,
		},
		{
			name:     "required field missing",
			input:    map[string]interface{}{"score": 0.5},
			wantCode: "REQUIRED_FIELD_MISSING",
		},
		{
			name:     "extra field rejected",
			input:    map[string]interface{}{"name": "x", "bogus": 1},
			wantCode: "EXTRA_FIELD",
		},
		{
			name:     "wrong type",
			input:    map[string]interface{}{"name": 42},
			wantCode: "INVALID_TYPE",
		},
		{
			name:     "number above maximum",
			input:    map[string]interface{}{"name": "x", "score": 1.5},
			wantCode: "MAXIMUM",
		},
		{
			name:     "number below minimum",
			input:    map[string]interface{}{"name": "x", "score": -0.5},
			wantCode: "MINIMUM",
		},
		{
			name:     "enum violation",
			input:    map[string]interface{}{"name": "x", "kind": "C"},
			wantCode: "INVALID_ENUM",
		},
		{
			name: "nested array item missing required key",
			input: map[string]interface{}{
				"name":  "x",
				"items": []interface{}{map[string]interface{}{"value": 0.5}},
			},
			wantCode: "REQUIRED_FIELD_MISSING",
		},
		{
			name: "nested array item range violation",
			input: map[string]interface{}{
				"name":  "x",
				"items": []interface{}{map[string]interface{}{"id": "a", "value": 2.0}},
			},
			wantCode: "MAXIMUM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, testSchema())
			if tt.wantValid {
				assert.True(t, result.Valid, "errors: %v", result.GetErrorMessages())
				return
			}
			require.False(t, result.Valid)
			codes := make([]string, 0, len(result.Errors))
			for _, e := range result.Errors {
				codes = append(codes, e.Code)
			}
			assert.Contains(t, codes, tt.wantCode)
		})
	}
}

func TestErrorSummary(t *testing.T) {
	result := ValidateInput(map[string]interface{}{}, testSchema())
	require.False(t, result.Valid)
	assert.Contains(t, result.ErrorSummary(), "name")
}

func TestValidateInputIntegerType(t *testing.T) {
	schema := JSONSchema{
		Type:       "object",
		Properties: map[string]Property{"count": {Type: "integer"}},
	}
	assert.True(t, ValidateInput(map[string]interface{}{"count": 3.0}, schema).Valid)
	assert.False(t, ValidateInput(map[string]interface{}{"count": 3.5}, schema).Valid)
}
