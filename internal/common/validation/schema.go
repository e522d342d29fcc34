// Package validation checks REST request bodies against JSON Schemas.
package validation

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names.
const (
	ExecuteCommand = "executeCommand"
	CreateProduct  = "createProduct"
	CreateSale     = "createSale"
)

var schemaDefinitions = map[string]map[string]interface{}{
	ExecuteCommand: {
		"type": "object",
		"properties": map[string]interface{}{
			"text":   map[string]interface{}{"type": "string"},
			"source": map[string]interface{}{"type": "string", "enum": []interface{}{"text", "voice"}},
		},
	},
	CreateProduct: {
		"type":     "object",
		"required": []interface{}{"name", "pricePerUnit"},
		"properties": map[string]interface{}{
			"name":              map[string]interface{}{"type": "string", "minLength": 1},
			"unit":              map[string]interface{}{"type": "string"},
			"stockQuantity":     map[string]interface{}{"type": "number", "minimum": 0},
			"pricePerUnit":      map[string]interface{}{"type": "number"},
			"lowStockThreshold": map[string]interface{}{"type": "number", "minimum": 0},
		},
	},
	CreateSale: {
		"type":     "object",
		"required": []interface{}{"productId", "quantity"},
		"properties": map[string]interface{}{
			"productId":    map[string]interface{}{"type": "string", "minLength": 1},
			"quantity":     map[string]interface{}{"type": "number"},
			"customerName": map[string]interface{}{"type": "string"},
		},
	},
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds compiled request schemas.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles every known request schema.
func NewValidator() (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(schemaDefinitions))}
	for name, def := range schemaDefinitions {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = schema
	}
	return v, nil
}

// Validate checks a raw JSON document against the named schema. A non-nil
// error means the document could not be read as JSON at all.
func (v *Validator) Validate(name string, document []byte) (*ValidationResult, error) {
	schema, ok := v.schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldOf(desc),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	sort.Slice(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out, nil
}

// fieldOf reports the offending property; "required" errors point at the
// parent object, so the missing property name is taken from the details.
func fieldOf(desc gojsonschema.ResultError) string {
	if desc.Type() == "required" {
		if p, ok := desc.Details()["property"].(string); ok {
			return p
		}
	}
	return desc.Field()
}

// FirstMessage returns a single line describing the first error.
func (r *ValidationResult) FirstMessage() string {
	if r == nil || len(r.Errors) == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s", r.Errors[0].Field, r.Errors[0].Message)
}
