package planner

import (
	"fmt"
	"time"

	"github.com/stockmaster/stockmaster/stockmaster/query"
	"github.com/stockmaster/stockmaster/stockmaster/storage"
)

// SQL renders f as a WHERE condition over the products table. Every
// literal is bound through b. The empty filter renders as TRUE.
func SQL(f query.Filter, d storage.Dialect, b storage.Builder) (string, error) {
	if f.IsEmpty() {
		return "TRUE", nil
	}
	c := &sqlCompiler{dialect: d, builder: b}
	return c.boolean(f.Root)
}

type sqlCompiler struct {
	dialect storage.Dialect
	builder storage.Builder
}

func (c *sqlCompiler) param(v any, t storage.ParamType) string {
	return c.dialect.Param(c.builder.Arg(v), t)
}

func (c *sqlCompiler) boolean(n query.Node) (string, error) {
	switch n := n.(type) {
	case query.And:
		return c.binary(n.Left, "AND", n.Right)
	case query.Or:
		return c.binary(n.Left, "OR", n.Right)
	case query.Not:
		inner, err := c.boolean(n.Inner)
		if err != nil {
			return "", err
		}
		// NULL from a missing field counts as false before negation.
		return "(NOT COALESCE(" + inner + ", FALSE))", nil
	case query.Compare:
		return c.compare(n)
	case query.Match:
		pattern := c.param(likeContains(n.Text), storage.ParamText)
		return c.dialect.ILike(c.dialect.FieldText(n.Field.Name), pattern), nil
	case query.Contains:
		return c.dialect.ArrayContains(n.Field.Name, c.param(n.Value, storage.ParamText)), nil
	case query.FieldRef:
		return c.dialect.FieldBool(n.Name), nil
	case query.Literal:
		if v, ok := n.Value.(bool); ok {
			if v {
				return "TRUE", nil
			}
			return "FALSE", nil
		}
		return "", fmt.Errorf("literal %v is not a boolean", n.Value)
	default:
		return "", fmt.Errorf("unknown node type: %T", n)
	}
}

func (c *sqlCompiler) binary(left query.Node, op string, right query.Node) (string, error) {
	l, err := c.boolean(left)
	if err != nil {
		return "", err
	}
	r, err := c.boolean(right)
	if err != nil {
		return "", err
	}
	return "(" + l + " " + op + " " + r + ")", nil
}

func isNull(n query.Node) bool {
	lit, ok := n.(query.Literal)
	return ok && lit.Value == nil
}

func (c *sqlCompiler) compare(n query.Compare) (string, error) {
	lNull, rNull := isNull(n.Left), isNull(n.Right)
	switch {
	case lNull && rNull:
		if n.Op == query.CmpEq {
			return "TRUE", nil
		}
		return "FALSE", nil
	case lNull || rNull:
		other := n.Left
		if lNull {
			other = n.Right
		}
		v, err := c.value(other)
		if err != nil {
			return "", err
		}
		if n.Op == query.CmpEq {
			return "(" + v + " IS NULL)", nil
		}
		return "(" + v + " IS NOT NULL)", nil
	}

	l, err := c.value(n.Left)
	if err != nil {
		return "", err
	}
	r, err := c.value(n.Right)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case query.CmpEq:
		return "(" + l + " = " + r + ")", nil
	case query.CmpNe:
		return c.dialect.DistinctFrom(l, r), nil
	default:
		return "(" + l + " " + n.Op.String() + " " + r + ")", nil
	}
}

func (c *sqlCompiler) value(n query.Node) (string, error) {
	switch n := n.(type) {
	case query.FieldRef:
		switch {
		case n.Numeric:
			return c.dialect.FieldNumber(n.Name), nil
		case n.Kind == query.KindBool:
			return c.dialect.FieldBool(n.Name), nil
		default:
			return c.dialect.FieldText(n.Name), nil
		}
	case query.Literal:
		switch v := n.Value.(type) {
		case nil:
			return "NULL", nil
		case float64:
			return c.param(v, storage.ParamNumber), nil
		case string:
			return c.param(v, storage.ParamText), nil
		case bool:
			return c.param(v, storage.ParamBool), nil
		case time.Time:
			// Datetimes are stored in one fixed-width layout, so text order
			// is time order.
			return c.param(query.FormatDate(v), storage.ParamText), nil
		default:
			return "", fmt.Errorf("unsupported literal %T", v)
		}
	case query.Arith:
		if n.Op == query.ArithMod {
			return c.mod(n)
		}
		l, r, err := c.operands(n)
		if err != nil {
			return "", err
		}
		return "(" + l + " " + n.Op.String() + " " + r + ")", nil
	default:
		return c.boolean(n)
	}
}

func (c *sqlCompiler) operands(n query.Arith) (string, string, error) {
	l, err := c.value(n.Left)
	if err != nil {
		return "", "", err
	}
	r, err := c.value(n.Right)
	if err != nil {
		return "", "", err
	}
	if n.Op == query.ArithDiv || n.Op == query.ArithMod {
		// A zero divisor yields NULL, which matches nothing.
		r = "NULLIF(" + r + ", 0)"
	}
	return l, r, nil
}

func (c *sqlCompiler) mod(n query.Arith) (string, error) {
	var err error
	out := c.dialect.Mod(func() (string, string) {
		l, r, rerr := c.operands(n)
		if err == nil {
			err = rerr
		}
		return l, r
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
