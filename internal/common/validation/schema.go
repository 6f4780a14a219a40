package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationResult mirrors gojsonschema's result in a form callers can log.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the errors into one line.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validator checks raw JSON documents against a compiled schema.
type Validator struct {
	name   string
	source string

	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

// NewValidator wraps a JSON Schema document. Compilation is deferred to first use.
func NewValidator(name, schemaJSON string) *Validator {
	return &Validator{name: name, source: schemaJSON}
}

func (v *Validator) compile() (*gojsonschema.Schema, error) {
	v.once.Do(func() {
		v.schema, v.err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(v.source))
		if v.err != nil {
			v.err = fmt.Errorf("compile schema %s: %w", v.name, v.err)
		}
	})
	return v.schema, v.err
}

// Validate checks body. A non-nil error means the body is not JSON or the schema is broken.
func (v *Validator) Validate(body []byte) (*ValidationResult, error) {
	schema, err := v.compile()
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}
