// Package config resolves and validates effect configuration against a
// declarative schema. Validation is advisory: it collects field-level
// errors and never fails registration.
package config

import (
	"fmt"
)

// FieldType enumerates the value kinds a schema can declare
type FieldType string

const (
	TypeNumber  FieldType = "number"
	TypeColor   FieldType = "color"
	TypeBoolean FieldType = "boolean"
	TypeString  FieldType = "string"
	TypeSelect  FieldType = "select"
	TypeArray   FieldType = "array"
)

// FieldSpec declares constraints for one configuration field
type FieldSpec struct {
	Type    FieldType `yaml:"type"`
	Min     *float64  `yaml:"min,omitempty"`
	Max     *float64  `yaml:"max,omitempty"`
	Options []string  `yaml:"options,omitempty"`
	Default any       `yaml:"default,omitempty"`
}

// Schema maps field names to their specs
type Schema map[string]FieldSpec

// FieldError reports one validation failure
type FieldError struct {
	Field   string
	Message string
	Value   any
}

// Error implements error for log formatting; FieldError values are
// collected, never returned as an error
func (e FieldError) Error() string {
	return fmt.Sprintf("config field %q: %s (got %v)", e.Field, e.Message, e.Value)
}
