package planner

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/spf13/cast"

	"github.com/stockmaster/stockmaster/stockmaster/query"
)

// Expr renders f as expr-lang source. The program runs against an
// environment of the form {"fields": map[string]any} and needs the
// functions from ExprOptions. The empty filter renders as "true".
func Expr(f query.Filter) (string, error) {
	if f.IsEmpty() {
		return "true", nil
	}
	var sb strings.Builder
	if err := writeExpr(&sb, f.Root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeExpr(sb *strings.Builder, n query.Node) error {
	switch n := n.(type) {
	case query.And:
		return writeExprBinary(sb, n.Left, "and", n.Right)
	case query.Or:
		return writeExprBinary(sb, n.Left, "or", n.Right)
	case query.Not:
		sb.WriteString("(not ")
		if err := writeExpr(sb, n.Inner); err != nil {
			return err
		}
		sb.WriteString(")")
	case query.Compare:
		return writeExprBinary(sb, n.Left, n.Op.String(), n.Right)
	case query.Arith:
		switch n.Op {
		case query.ArithMod:
			return writeExprCall(sb, "mod", n.Left, n.Right)
		case query.ArithDiv:
			return writeExprCall(sb, "div", n.Left, n.Right)
		}
		return writeExprBinary(sb, n.Left, n.Op.String(), n.Right)
	case query.Match:
		return writeExprCall(sb, "like", n.Field, query.Literal{Value: n.Pattern})
	case query.Contains:
		return writeExprCall(sb, "includes", n.Field, query.Literal{Value: n.Value})
	case query.FieldRef:
		access := "fields[" + strconv.Quote(n.Name) + "]"
		switch {
		case n.Numeric:
			sb.WriteString("num(" + access + ")")
		case n.Kind == query.KindDate:
			sb.WriteString("dt(" + access + ")")
		default:
			sb.WriteString(access)
		}
	case query.Literal:
		switch v := n.Value.(type) {
		case nil:
			sb.WriteString("nil")
		case bool:
			sb.WriteString(strconv.FormatBool(v))
		case float64:
			if v < 0 {
				sb.WriteString("(" + formatNumber(v) + ")")
			} else {
				sb.WriteString(formatNumber(v))
			}
		case string:
			sb.WriteString(strconv.Quote(v))
		case time.Time:
			sb.WriteString(strconv.Quote(query.FormatDate(v)))
		default:
			return fmt.Errorf("unsupported literal %T", v)
		}
	default:
		return fmt.Errorf("unknown node type: %T", n)
	}
	return nil
}

func writeExprBinary(sb *strings.Builder, left query.Node, op string, right query.Node) error {
	sb.WriteString("(")
	if err := writeExpr(sb, left); err != nil {
		return err
	}
	sb.WriteString(" " + op + " ")
	if err := writeExpr(sb, right); err != nil {
		return err
	}
	sb.WriteString(")")
	return nil
}

func writeExprCall(sb *strings.Builder, fn string, args ...query.Node) error {
	sb.WriteString(fn + "(")
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if err := writeExpr(sb, arg); err != nil {
			return err
		}
	}
	sb.WriteString(")")
	return nil
}

// ExprOptions returns the functions used by programs built from Expr.
func ExprOptions() []expr.Option {
	return []expr.Option{
		expr.Function("num", func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("num requires 1 parameter")
			}
			return toNumber(params[0]), nil
		}),
		expr.Function("dt", func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("dt requires 1 parameter")
			}
			return toDate(params[0]), nil
		}),
		expr.Function("div", func(params ...any) (any, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("div requires 2 parameters")
			}
			a, b, ok := divisionOperands(params[0], params[1])
			if !ok {
				return nil, nil
			}
			return a / b, nil
		}),
		expr.Function("mod", func(params ...any) (any, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("mod requires 2 parameters")
			}
			a, b, ok := divisionOperands(params[0], params[1])
			if !ok {
				return nil, nil
			}
			return math.Mod(a, b), nil
		}),
		expr.Function("like", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("like requires 2 parameters")
			}
			text, ok1 := params[0].(string)
			pattern, ok2 := params[1].(string)
			if !ok1 || !ok2 {
				return false, nil
			}
			return regexp.MatchString("(?i)"+pattern, text)
		}),
		expr.Function("includes", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("includes requires 2 parameters")
			}
			return includes(params[0], params[1]), nil
		}),
	}
}

// toNumber returns v as float64, or nil when it has no numeric reading.
func toNumber(v any) any {
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return f
}

// divisionOperands reads both operands as numbers. A missing operand or a
// zero divisor yields no result, as NULLIF does in SQL.
func divisionOperands(x, y any) (float64, float64, bool) {
	a, b := toNumber(x), toNumber(y)
	if a == nil || b == nil || b.(float64) == 0 {
		return 0, 0, false
	}
	return a.(float64), b.(float64), true
}

// toDate returns v in canonical datetime text form, or nil.
func toDate(v any) any {
	switch v := v.(type) {
	case time.Time:
		return query.FormatDate(v)
	case string:
		if t, ok := query.ParseDate(v); ok {
			return query.FormatDate(t)
		}
	}
	return nil
}

func includes(list, value any) bool {
	switch list.(type) {
	case []any, []string:
	default:
		return false
	}
	items, err := cast.ToStringSliceE(list)
	if err != nil {
		return false
	}
	want := cast.ToString(value)
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
