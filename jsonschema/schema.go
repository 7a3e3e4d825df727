package jsonschema

import (
	json "github.com/goccy/go-json"
)

// Draft is the dialect emitted by lcd.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	SchemaURI   string `json:"$schema,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        any    `json:"type,omitempty"` // string or []string (nullable)
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	Const       any    `json:"const,omitempty"`

	// Number
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`

	// Definitions
	Defs map[string]*Schema `json:"$defs,omitempty"`

	// PropertyOrder lists properties in declaration order (not serialized).
	PropertyOrder []string `json:"-"`
}

// DefRef returns the $ref value for a definition name.
func DefRef(name string) string { return "#/$defs/" + name }

// Nullable wraps s so that null is also accepted. Plain typed schemas get a
// type list; references and unions are wrapped in anyOf.
func Nullable(s *Schema) *Schema {
	if t, ok := s.Type.(string); ok && s.Ref == "" {
		cp := *s
		cp.Type = []string{t, "null"}
		return &cp
	}
	if s.Type == nil && s.Ref == "" && len(s.OneOf) == 0 && len(s.AnyOf) == 0 {
		return s
	}
	return &Schema{AnyOf: []*Schema{s, {Type: "null"}}}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// MarshalIndent encodes s with two-space indentation.
func MarshalIndent(s *Schema) ([]byte, error) { return json.MarshalIndent(s, "", "  ") }
