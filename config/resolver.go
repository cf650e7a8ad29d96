package config

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/mapglow/expr"
)

// Resolve shallow-merges user configuration over defaults.
// Nil user fields fall back to the default; keys absent from defaults pass
// through unchanged so effects can carry extension data.
func Resolve(defaults, user map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(user))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range user {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// Validate checks a resolved configuration against a schema and returns
// the list of field-level errors. Fields absent from the schema are
// ignored; values with the data-driven expression shape bypass all checks
// since they evaluate per feature later.
func Validate(cfg map[string]any, schema Schema) []FieldError {
	var errs []FieldError
	for name, spec := range schema {
		v, ok := cfg[name]
		if !ok || v == nil {
			continue
		}
		if expr.IsExpression(v) {
			continue
		}
		if err := validateField(name, v, spec); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

func validateField(name string, v any, spec FieldSpec) *FieldError {
	switch spec.Type {
	case TypeNumber:
		n, ok := toNumber(v)
		if !ok {
			return &FieldError{Field: name, Message: "expected a number", Value: v}
		}
		if spec.Min != nil && n < *spec.Min {
			return &FieldError{Field: name, Message: fmt.Sprintf("below minimum %v", *spec.Min), Value: v}
		}
		if spec.Max != nil && n > *spec.Max {
			return &FieldError{Field: name, Message: fmt.Sprintf("above maximum %v", *spec.Max), Value: v}
		}

	case TypeColor:
		if !validColor(v) {
			return &FieldError{Field: name, Message: "expected hex color or 4-component array in [0,1]", Value: v}
		}

	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return &FieldError{Field: name, Message: "expected a boolean", Value: v}
		}

	case TypeString:
		if _, ok := v.(string); !ok {
			return &FieldError{Field: name, Message: "expected a string", Value: v}
		}

	case TypeSelect:
		s, ok := v.(string)
		if !ok {
			return &FieldError{Field: name, Message: "expected a string option", Value: v}
		}
		for _, opt := range spec.Options {
			if s == opt {
				return nil
			}
		}
		return &FieldError{
			Field:   name,
			Message: fmt.Sprintf("not one of [%s]", strings.Join(spec.Options, ", ")),
			Value:   v,
		}

	case TypeArray:
		if _, ok := v.([]any); !ok {
			return &FieldError{Field: name, Message: "expected an array", Value: v}
		}
	}
	return nil
}

// validColor accepts #RGB, #RRGGBB, #RRGGBBAA, or a 4-component array
// with each component in [0,1]
func validColor(v any) bool {
	switch c := v.(type) {
	case string:
		return validHexColor(c)
	case []any:
		if len(c) != 4 {
			return false
		}
		for _, comp := range c {
			n, ok := toNumber(comp)
			if !ok || n < 0 || n > 1 {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func validHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	switch len(s) {
	case 4, 7:
		_, err := colorful.Hex(s)
		return err == nil
	case 9:
		// colorful has no alpha channel; validate the RGB part and the
		// trailing alpha digits separately
		if _, err := colorful.Hex(s[:7]); err != nil {
			return false
		}
		return isHex(s[7]) && isHex(s[8])
	default:
		return false
	}
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// toNumber is expr.Number minus its bool coercion; a bare true is not a
// valid numeric config value
func toNumber(v any) (float64, bool) {
	if _, ok := v.(bool); ok {
		return 0, false
	}
	return expr.Number(v)
}
