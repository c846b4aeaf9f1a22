// Package validation checks form payloads against JSON schemas before they
// are sent to the backend.
package validation

import (
	"fmt"

	"canchapp/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled form schema. Fields lists the properties in form
// order; the first failing field in that order is the one reported to the
// user. Messages holds the user-facing text per field.
type Schema struct {
	Name     string
	Fields   []string
	Messages map[string]string

	compiled *gojsonschema.Schema
}

// MustCompile compiles a schema literal. Schemas are package-level literals,
// so a compile failure is a programming error.
func MustCompile(name string, fields []string, messages map[string]string, schema map[string]interface{}) *Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("validation: schema %s: %v", name, err))
	}
	return &Schema{
		Name:     name,
		Fields:   fields,
		Messages: messages,
		compiled: compiled,
	}
}

// Validate checks doc, which is marshalled through its json tags.
func (s *Schema) Validate(doc interface{}) *ValidationResult {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "",
				Message: "the form could not be read",
				Code:    "INVALID_DOCUMENT",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if p, ok := desc.Details()["property"].(string); ok {
				field = p
			}
		}
		msg, ok := s.Messages[field]
		if !ok {
			msg = desc.Description()
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: msg,
			Code:    desc.Type(),
		})
	}
	return out
}

// Check validates doc and returns the first failure, in form order, as a
// VALIDATION_FAILED error.
func (s *Schema) Check(doc interface{}) error {
	res := s.Validate(doc)
	if res.Valid {
		return nil
	}
	first := res.Errors[0]
	for _, f := range s.Fields {
		if e, ok := res.byField(f); ok {
			first = e
			break
		}
	}
	return errors.NewValidationError(first.Field, first.Message).WithMetadata("schema", s.Name)
}

func (r *ValidationResult) byField(field string) (ValidationError, bool) {
	for _, e := range r.Errors {
		if e.Field == field {
			return e, true
		}
	}
	return ValidationError{}, false
}

// NonBlank is a string property that must contain a non-space character.
func NonBlank() map[string]interface{} {
	return map[string]interface{}{"type": "string", "pattern": `\S`}
}

// Pattern is a string property matching re.
func Pattern(re string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "pattern": re}
}

// IntRange is an integer property within [min, max].
func IntRange(min, max int) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "minimum": min, "maximum": max}
}

// PositiveID is an integer id that must have been chosen.
func PositiveID() map[string]interface{} {
	return map[string]interface{}{"type": "integer", "minimum": 1}
}

// Object assembles an object schema from its properties. Every property is
// required.
func Object(props map[string]interface{}) map[string]interface{} {
	required := make([]interface{}, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
