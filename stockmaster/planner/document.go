package planner

import (
	"fmt"

	"github.com/stockmaster/stockmaster/stockmaster/query"
)

// FieldsKey is the document key holding a product's dynamic fields.
const FieldsKey = "fields"

var documentCmpOps = map[query.CmpOp]string{
	query.CmpEq:  "$eq",
	query.CmpNe:  "$ne",
	query.CmpLt:  "$lt",
	query.CmpGt:  "$gt",
	query.CmpLte: "$lte",
	query.CmpGte: "$gte",
}

var documentArithOps = map[query.ArithOp]string{
	query.ArithAdd: "$add",
	query.ArithSub: "$subtract",
	query.ArithMul: "$multiply",
	query.ArithDiv: "$divide",
	query.ArithMod: "$mod",
}

// Document renders f as a MongoDB aggregation filter of the form
// {"$expr": ...}. The empty filter renders as an empty document.
func Document(f query.Filter) (map[string]any, error) {
	if f.IsEmpty() {
		return map[string]any{}, nil
	}
	expr, err := documentNode(f.Root)
	if err != nil {
		return nil, err
	}
	return map[string]any{"$expr": expr}, nil
}

func documentNode(n query.Node) (any, error) {
	switch n := n.(type) {
	case query.And:
		return documentBinary("$and", n.Left, n.Right)
	case query.Or:
		return documentBinary("$or", n.Left, n.Right)
	case query.Not:
		inner, err := documentNode(n.Inner)
		if err != nil {
			return nil, err
		}
		return map[string]any{"$not": []any{inner}}, nil
	case query.Compare:
		return documentBinary(documentCmpOps[n.Op], n.Left, n.Right)
	case query.Arith:
		return documentBinary(documentArithOps[n.Op], n.Left, n.Right)
	case query.Match:
		return map[string]any{"$regexMatch": map[string]any{
			"input":   getField(n.Field.Name),
			"regex":   n.Pattern,
			"options": "i",
		}}, nil
	case query.Contains:
		return map[string]any{"$in": []any{
			n.Value,
			map[string]any{"$ifNull": []any{getField(n.Field.Name), []any{}}},
		}}, nil
	case query.FieldRef:
		path := "$" + FieldsKey + "." + n.Name
		if n.Numeric {
			return map[string]any{"$toDouble": path}, nil
		}
		return path, nil
	case query.Literal:
		if s, ok := n.Value.(string); ok {
			return map[string]any{"$literal": s}, nil
		}
		return n.Value, nil
	default:
		return nil, fmt.Errorf("unknown node type: %T", n)
	}
}

func documentBinary(op string, left, right query.Node) (any, error) {
	l, err := documentNode(left)
	if err != nil {
		return nil, err
	}
	r, err := documentNode(right)
	if err != nil {
		return nil, err
	}
	return map[string]any{op: []any{l, r}}, nil
}

// getField reads a field without interpreting dots in its name.
func getField(name string) map[string]any {
	return map[string]any{"$getField": map[string]any{"field": name, "input": "$" + FieldsKey}}
}
