package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DocumentSchema is a compiled JSON Schema used to check raw request bodies.
type DocumentSchema struct {
	name   string
	schema *gojsonschema.Schema
}

// CompileSchema compiles a JSON Schema document once so it can be shared
// across requests.
func CompileSchema(name, schemaJSON string) (*DocumentSchema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &DocumentSchema{name: name, schema: schema}, nil
}

// MustCompileSchema is CompileSchema for package-level schema literals.
func MustCompileSchema(name, schemaJSON string) *DocumentSchema {
	s, err := CompileSchema(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name given at compile time.
func (s *DocumentSchema) Name() string {
	return s.name
}

// ValidateDocument checks a raw JSON body. A body that is not JSON at all is
// reported as a single INVALID_TYPE error on the root.
func (s *DocumentSchema) ValidateDocument(body []byte) *ValidationResult {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: "body is not valid JSON",
				Code:    CodeInvalidType,
			}},
		}
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    codeFor(re.Type()),
		})
	}
	return &ValidationResult{Valid: false, Errors: errs}
}

func codeFor(errType string) string {
	switch {
	case errType == "required":
		return CodeRequired
	case errType == "invalid_type":
		return CodeInvalidType
	case errType == "enum":
		return CodeInvalidEnum
	case errType == "additional_property_not_allowed":
		return CodeExtraField
	case strings.HasPrefix(errType, "string_gte"):
		return CodeMinLength
	case strings.HasPrefix(errType, "string_lte"):
		return CodeMaxLength
	case errType == "pattern":
		return CodePattern
	case strings.HasPrefix(errType, "number_gte"):
		return CodeBelowMinimum
	case strings.HasPrefix(errType, "number_lte"):
		return CodeAboveMaximum
	default:
		return strings.ToUpper(errType)
	}
}
