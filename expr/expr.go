// Package expr implements the tagged-array expression grammar used for
// data-driven configuration values. An expression is an array whose first
// element names the operation, e.g. ["get", "speed"] or
// ["*", ["get", "magnitude"], 0.5]. Parsing produces a closed set of
// expression nodes; evaluation runs against one feature's property bag and
// never panics, yielding zero values on type mismatch.
package expr

import (
	"fmt"
)

// Expr is one parsed expression node
type Expr interface {
	// Eval computes the expression over a property bag
	Eval(props map[string]any) any
}

// Literal wraps a constant number, string, or bool
type Literal struct {
	Value any
}

// Get reads a property value, nil if absent
type Get struct {
	Property string
}

// Has tests property presence
type Has struct {
	Property string
}

// Arith is a variadic numeric operation: + - * /
type Arith struct {
	Op   string
	Args []Expr
}

// Compare is a binary comparison: == != < <= > >=
type Compare struct {
	Op    string
	Left  Expr
	Right Expr
}

// Clamp bounds a numeric value into [Lo, Hi]
type Clamp struct {
	Value Expr
	Lo    Expr
	Hi    Expr
}

// Coalesce returns the first non-nil argument
type Coalesce struct {
	Args []Expr
}

// Case is condition/output pairs with a trailing fallback
type Case struct {
	Conds    []Expr
	Outputs  []Expr
	Fallback Expr
}

var operators = map[string]bool{
	"get": true, "has": true,
	"+": true, "-": true, "*": true, "/": true,
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"clamp": true, "coalesce": true, "case": true,
}

// IsExpression reports whether a raw config value has the tagged-array
// shape. Used by config validation to bypass data-driven values.
func IsExpression(v any) bool {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return false
	}
	op, ok := arr[0].(string)
	return ok && operators[op]
}

// Parse converts a raw value into an expression node.
// Scalars parse as literals; arrays must start with a known operator.
func Parse(v any) (Expr, error) {
	switch val := v.(type) {
	case nil:
		return Literal{Value: nil}, nil
	case float64, float32, int, int32, int64, uint, uint32, uint64, string, bool:
		return Literal{Value: val}, nil
	case []any:
		return parseArray(val)
	default:
		return nil, fmt.Errorf("expr: unsupported value type %T", v)
	}
}

func parseArray(arr []any) (Expr, error) {
	if len(arr) == 0 {
		return nil, fmt.Errorf("expr: empty expression array")
	}
	op, ok := arr[0].(string)
	if !ok || !operators[op] {
		return nil, fmt.Errorf("expr: unknown operator %v", arr[0])
	}
	args := arr[1:]

	switch op {
	case "get", "has":
		if len(args) != 1 {
			return nil, fmt.Errorf("expr: %q wants 1 argument, got %d", op, len(args))
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("expr: %q wants a property name, got %T", op, args[0])
		}
		if op == "get" {
			return Get{Property: name}, nil
		}
		return Has{Property: name}, nil

	case "+", "-", "*", "/":
		if len(args) < 2 {
			return nil, fmt.Errorf("expr: %q wants at least 2 arguments, got %d", op, len(args))
		}
		sub, err := parseAll(args)
		if err != nil {
			return nil, err
		}
		return Arith{Op: op, Args: sub}, nil

	case "==", "!=", "<", "<=", ">", ">=":
		if len(args) != 2 {
			return nil, fmt.Errorf("expr: %q wants 2 arguments, got %d", op, len(args))
		}
		sub, err := parseAll(args)
		if err != nil {
			return nil, err
		}
		return Compare{Op: op, Left: sub[0], Right: sub[1]}, nil

	case "clamp":
		if len(args) != 3 {
			return nil, fmt.Errorf("expr: clamp wants 3 arguments, got %d", len(args))
		}
		sub, err := parseAll(args)
		if err != nil {
			return nil, err
		}
		return Clamp{Value: sub[0], Lo: sub[1], Hi: sub[2]}, nil

	case "coalesce":
		if len(args) < 1 {
			return nil, fmt.Errorf("expr: coalesce wants at least 1 argument")
		}
		sub, err := parseAll(args)
		if err != nil {
			return nil, err
		}
		return Coalesce{Args: sub}, nil

	case "case":
		// cond, out, cond, out, ..., fallback
		if len(args) < 3 || len(args)%2 == 0 {
			return nil, fmt.Errorf("expr: case wants cond/output pairs plus fallback, got %d arguments", len(args))
		}
		sub, err := parseAll(args)
		if err != nil {
			return nil, err
		}
		n := len(sub) - 1
		c := Case{Fallback: sub[n]}
		for i := 0; i < n; i += 2 {
			c.Conds = append(c.Conds, sub[i])
			c.Outputs = append(c.Outputs, sub[i+1])
		}
		return c, nil
	}

	return nil, fmt.Errorf("expr: unhandled operator %q", op)
}

func parseAll(raw []any) ([]Expr, error) {
	out := make([]Expr, len(raw))
	for i, r := range raw {
		e, err := Parse(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
