package validation

import (
	"fmt"
	"strings"

	apperrors "marketpulse/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// SearchRequestSchema describes the body of a market search call.
const SearchRequestSchema = `{
  "type": "object",
  "properties": {
    "brand": {"type": "string", "minLength": 1, "pattern": "\\S"}
  },
  "required": ["brand"]
}`

// SampleDataRequestSchema describes the body of a sample data call.
const SampleDataRequestSchema = `{
  "type": "object",
  "properties": {
    "userId":       {"type": "string", "minLength": 1, "pattern": "\\S"},
    "businessName": {"type": ["string", "null"]}
  },
  "required": ["userId"]
}`

// ResetRequestSchema describes the body of a data reset call.
const ResetRequestSchema = `{
  "type": "object",
  "properties": {
    "userId": {"type": "string", "minLength": 1, "pattern": "\\S"}
  },
  "required": ["userId"]
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator checks documents against one compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schemaJSON once.
func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// MustValidator is NewValidator for schemas known at compile time.
func MustValidator(schemaJSON string) *Validator {
	v, err := NewValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateJSON validates a raw JSON document. A body that is not JSON at all
// comes back as an error rather than a result.
func (v *Validator) ValidateJSON(raw []byte) (*ValidationResult, error) {
	return v.validate(gojsonschema.NewBytesLoader(raw))
}

// ValidateInput validates an already decoded document, e.g. job variables.
func (v *Validator) ValidateInput(input map[string]interface{}) (*ValidationResult, error) {
	return v.validate(gojsonschema.NewGoLoader(input))
}

func (v *Validator) validate(doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := v.schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		field := re.Field()
		if field == "(root)" {
			if name, ok := re.Details()["property"].(string); ok {
				field = name
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	return out, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// AsError folds every violation into one ValidationError, or returns nil
// when the document is valid.
func (vr *ValidationResult) AsError() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	if len(vr.Errors) == 1 {
		return &apperrors.ValidationError{Field: vr.Errors[0].Field, Message: vr.Errors[0].Message}
	}
	return &apperrors.ValidationError{Message: strings.Join(vr.GetErrorMessages(), "; ")}
}
