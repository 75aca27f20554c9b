package query

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical text form of datetime values.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Node is a node of a compiled predicate tree. The set of node types is
// closed; renderers switch over it exhaustively.
type Node interface {
	isNode()
}

// And represents a boolean AND of two expressions
type And struct {
	Left  Node
	Right Node
}

func (And) isNode() {}

// Or represents a boolean OR of two expressions
type Or struct {
	Left  Node
	Right Node
}

func (Or) isNode() {}

// Not represents a boolean NOT of an expression
type Not struct {
	Inner Node
}

func (Not) isNode() {}

// CmpOp is a comparison operator
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpGt
	CmpLte
	CmpGte
)

func (op CmpOp) String() string {
	switch op {
	case CmpEq:
		return "=="
	case CmpNe:
		return "!="
	case CmpLt:
		return "<"
	case CmpGt:
		return ">"
	case CmpLte:
		return "<="
	case CmpGte:
		return ">="
	default:
		return "?"
	}
}

// Compare compares two value expressions.
type Compare struct {
	Op    CmpOp
	Left  Node
	Right Node
}

func (Compare) isNode() {}

// ArithOp is an arithmetic operator
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithMod
)

func (op ArithOp) String() string {
	switch op {
	case ArithAdd:
		return "+"
	case ArithSub:
		return "-"
	case ArithMul:
		return "*"
	case ArithDiv:
		return "/"
	case ArithMod:
		return "%"
	default:
		return "?"
	}
}

// Arith is a numeric expression.
type Arith struct {
	Op    ArithOp
	Left  Node
	Right Node
}

func (Arith) isNode() {}

// Match is a case-insensitive substring match of a string field.
// Pattern holds Text with every regex metacharacter escaped.
type Match struct {
	Field   FieldRef
	Text    string
	Pattern string
}

func (Match) isNode() {}

// Contains tests array membership of a string value.
type Contains struct {
	Field FieldRef
	Value string
}

func (Contains) isNode() {}

// FieldRef references a field of the record's dynamic field container.
// Numeric is set when the value must be read as a number.
type FieldRef struct {
	Name    string
	Kind    Kind
	Numeric bool
}

func (FieldRef) isNode() {}

// Literal is a constant: float64, string, bool, time.Time or nil.
type Literal struct {
	Value any
}

func (Literal) isNode() {}

// Filter is the result of a compilation. A nil Root is the empty filter,
// which matches every record.
type Filter struct {
	Root Node
}

// IsEmpty reports whether f is the match-all filter.
func (f Filter) IsEmpty() bool {
	return f.Root == nil
}

// String renders f in a fully parenthesized infix form.
func (f Filter) String() string {
	if f.Root == nil {
		return "true"
	}
	var sb strings.Builder
	writeNode(&sb, f.Root)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case And:
		writeBinary(sb, n.Left, "and", n.Right)
	case Or:
		writeBinary(sb, n.Left, "or", n.Right)
	case Not:
		sb.WriteString("(not ")
		writeNode(sb, n.Inner)
		sb.WriteString(")")
	case Compare:
		writeBinary(sb, n.Left, n.Op.String(), n.Right)
	case Arith:
		writeBinary(sb, n.Left, n.Op.String(), n.Right)
	case Match:
		writeBinary(sb, n.Field, "like", Literal{Value: n.Text})
	case Contains:
		writeBinary(sb, n.Field, "includes", Literal{Value: n.Value})
	case FieldRef:
		if n.Numeric {
			sb.WriteString("num(" + n.Name + ")")
		} else {
			sb.WriteString(n.Name)
		}
	case Literal:
		sb.WriteString(formatLiteral(n.Value))
	}
}

func writeBinary(sb *strings.Builder, left Node, op string, right Node) {
	sb.WriteString("(")
	writeNode(sb, left)
	sb.WriteString(" " + op + " ")
	writeNode(sb, right)
	sb.WriteString(")")
}

func formatLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return kwNull
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return "'" + v + "'"
	case time.Time:
		return "date('" + v.UTC().Format(DateLayout) + "')"
	default:
		return "?"
	}
}
