package expr

// Eval implements Expr
func (l Literal) Eval(props map[string]any) any {
	return l.Value
}

// Eval implements Expr
func (g Get) Eval(props map[string]any) any {
	return props[g.Property]
}

// Eval implements Expr
func (h Has) Eval(props map[string]any) any {
	_, ok := props[h.Property]
	return ok
}

// Eval implements Expr
// Division by zero yields 0 rather than Inf so downstream uniform
// formulas stay finite
func (a Arith) Eval(props map[string]any) any {
	acc, _ := Number(a.Args[0].Eval(props))
	for _, arg := range a.Args[1:] {
		v, _ := Number(arg.Eval(props))
		switch a.Op {
		case "+":
			acc += v
		case "-":
			acc -= v
		case "*":
			acc *= v
		case "/":
			if v == 0 {
				return float64(0)
			}
			acc /= v
		}
	}
	return acc
}

// Eval implements Expr
func (c Compare) Eval(props map[string]any) any {
	lv := c.Left.Eval(props)
	rv := c.Right.Eval(props)

	switch c.Op {
	case "==":
		return equal(lv, rv)
	case "!=":
		return !equal(lv, rv)
	}

	ln, lok := Number(lv)
	rn, rok := Number(rv)
	if !lok || !rok {
		return false
	}
	switch c.Op {
	case "<":
		return ln < rn
	case "<=":
		return ln <= rn
	case ">":
		return ln > rn
	case ">=":
		return ln >= rn
	}
	return false
}

// Eval implements Expr
func (c Clamp) Eval(props map[string]any) any {
	v, _ := Number(c.Value.Eval(props))
	lo, _ := Number(c.Lo.Eval(props))
	hi, _ := Number(c.Hi.Eval(props))
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Eval implements Expr
func (c Coalesce) Eval(props map[string]any) any {
	for _, arg := range c.Args {
		if v := arg.Eval(props); v != nil {
			return v
		}
	}
	return nil
}

// Eval implements Expr
func (c Case) Eval(props map[string]any) any {
	for i, cond := range c.Conds {
		if Truthy(cond.Eval(props)) {
			return c.Outputs[i].Eval(props)
		}
	}
	return c.Fallback.Eval(props)
}

// Number coerces an evaluated value to float64
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Truthy follows expression-evaluation semantics: nil, false, 0 and ""
// are false, everything else true
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		if n, ok := Number(v); ok {
			return n != 0
		}
		return true
	}
}

// equal compares numbers numerically and strings textually; anything
// else (property bags can hold arrays) compares unequal except nil==nil
func equal(a, b any) bool {
	if an, ok := Number(a); ok {
		if bn, ok := Number(b); ok {
			return an == bn
		}
		return false
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as == bs
		}
		return false
	}
	return a == nil && b == nil
}
