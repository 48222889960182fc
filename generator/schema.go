package generator

import (
	"fmt"
)

// SchemaKind tags the top-level shape of a declared response contract.
type SchemaKind string

const (
	SchemaObjectArray SchemaKind = "array"
)

// Property is one required string key of each item.
type Property struct {
	Name        string
	Description string
}

// Schema is the declared response contract handed to the model and used to
// validate its answer. Validation is separate from JSON decoding so a bad
// shape and bad JSON stay distinguishable.
type Schema struct {
	Name       string
	Kind       SchemaKind
	Properties []Property
}

// EmailListSchema is an ordered list of {subject, body} string objects.
var EmailListSchema = Schema{
	Name: "email_drafts",
	Kind: SchemaObjectArray,
	Properties: []Property{
		{Name: "subject", Description: "Asunto del email"},
		{Name: "body", Description: "Cuerpo del email con párrafos separados por \\n\\n"},
	},
}

// JSONSchema renders the contract as a JSON Schema document.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Properties))
	required := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		props[p.Name] = map[string]any{
			"type":        "string",
			"description": p.Description,
		}
		required = append(required, p.Name)
	}
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             required,
			"additionalProperties": false,
		},
	}
}

// Validate checks a decoded JSON value against the contract.
func (s Schema) Validate(v any) error {
	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%w: expected array, got %s", ErrSchemaViolation, jsonKind(v))
	}
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: item %d: expected object, got %s", ErrSchemaViolation, i, jsonKind(item))
		}
		for _, p := range s.Properties {
			val, present := obj[p.Name]
			if !present {
				return fmt.Errorf("%w: item %d: missing key %q", ErrSchemaViolation, i, p.Name)
			}
			if _, isString := val.(string); !isString {
				return fmt.Errorf("%w: item %d: key %q must be a string, got %s", ErrSchemaViolation, i, p.Name, jsonKind(val))
			}
		}
	}
	return nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
