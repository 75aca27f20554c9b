package query

import "regexp"

// reduce pops an operator and its operands and pushes the combined
// operand. at is the position of the token that forced the reduction,
// or -1 at end of input.
func (e *evaluator) reduce(at int) error {
	if len(e.opers) == 0 {
		return newParseError(at, "", ErrStructure, "missing operator")
	}
	op := e.popOper()
	if op == opParen {
		return newParseError(at, "(", ErrStructure, "unbalanced parenthesis")
	}

	if len(e.types) == 0 {
		return newParseError(at, op.String(), ErrStructure, "missing operand")
	}
	bs, bv := e.pop()

	if op.Unary() {
		if bs.kind != KindBool {
			return newParseError(at, op.String(), ErrType, "operator %s does not accept %s", op, bs)
		}
		e.push(slot{kind: KindBool}, Not{Inner: boolOperand(bs, bv)})
		return nil
	}

	if len(e.types) == 0 {
		return newParseError(at, op.String(), ErrStructure, "missing operand")
	}
	as, av := e.pop()

	node, kind, err := e.combine(op, as, av, bs, bv)
	if err != nil {
		if pe, ok := err.(*ParseError); ok && pe.Pos < 0 {
			pe.Pos = at
		}
		return err
	}
	e.push(slot{kind: kind}, node)
	return nil
}

// combine applies the rule table for a binary operator.
func (e *evaluator) combine(op Operator, as slot, av Node, bs slot, bv Node) (Node, Kind, error) {
	switch op.class() {
	case classBinaryBool, classGuard:
		if as.kind == KindBool && bs.kind == KindBool {
			l, r := boolOperand(as, av), boolOperand(bs, bv)
			if op == OpOr {
				return Or{Left: l, Right: r}, KindBool, nil
			}
			return And{Left: l, Right: r}, KindBool, nil
		}

	case classArith:
		if as.kind == KindNum && bs.kind == KindNum {
			e.guard(as, av)
			e.guard(bs, bv)
			return Arith{Op: arithOp(op), Left: numeric(as, av), Right: numeric(bs, bv)}, KindNum, nil
		}

	case classOrder:
		if as.kind == KindNum && bs.kind == KindNum {
			e.guard(as, av)
			e.guard(bs, bv)
			return Compare{Op: cmpOp(op), Left: numeric(as, av), Right: numeric(bs, bv)}, KindBool, nil
		}
		if isDateShape(as) && isDateShape(bs) {
			return e.compareDates(op, as, av, bs, bv)
		}

	case classEquality:
		switch {
		case as.kind == KindNull || bs.kind == KindNull:
			return Compare{Op: cmpOp(op), Left: av, Right: bv}, KindBool, nil
		case as.kind == KindBool && bs.kind == KindBool:
			return Compare{Op: cmpOp(op), Left: av, Right: bv}, KindBool, nil
		case as.kind == KindNum && bs.kind == KindNum:
			e.guard(as, av)
			e.guard(bs, bv)
			return Compare{Op: cmpOp(op), Left: numeric(as, av), Right: numeric(bs, bv)}, KindBool, nil
		case as.kind == KindStr && bs.kind == KindStr:
			return Compare{Op: cmpOp(op), Left: av, Right: bv}, KindBool, nil
		case isDateShape(as) && isDateShape(bs):
			return e.compareDates(op, as, av, bs, bv)
		}

	case classLike:
		if as.kind == KindStr && as.field && bs.kind == KindStr && !bs.field {
			ref, _ := av.(FieldRef)
			text := literalString(bv)
			return Match{Field: ref, Text: text, Pattern: regexp.QuoteMeta(text)}, KindBool, nil
		}

	case classIncludes:
		if as.kind == KindArr && as.field && bs.kind == KindStr && !bs.field {
			ref, _ := av.(FieldRef)
			return Contains{Field: ref, Value: literalString(bv)}, KindBool, nil
		}
	}

	return nil, 0, newParseError(-1, op.String(), ErrType, "operator %s does not accept (%s, %s)", op, as, bs)
}

// compareDates compares datetime fields and datetime-shaped string
// literals. A literal that does not parse invalidates the expression.
func (e *evaluator) compareDates(op Operator, as slot, av Node, bs slot, bv Node) (Node, Kind, error) {
	l, err := dateOperand(as, av)
	if err != nil {
		return nil, 0, err
	}
	r, err := dateOperand(bs, bv)
	if err != nil {
		return nil, 0, err
	}
	e.guard(as, av)
	e.guard(bs, bv)
	return Compare{Op: cmpOp(op), Left: l, Right: r}, KindBool, nil
}

// isDateShape reports whether s can take part in a date comparison:
// a datetime operand or a string literal.
func isDateShape(s slot) bool {
	return s.kind == KindDate || (s.kind == KindStr && !s.field)
}

func dateOperand(s slot, n Node) (Node, error) {
	if s.kind == KindDate {
		return n, nil
	}
	text := literalString(n)
	t, ok := ParseDate(text)
	if !ok {
		return nil, newParseError(-1, text, ErrValue, "not a valid datetime")
	}
	return Literal{Value: t}, nil
}

// boolOperand turns a bare boolean field into "field == true".
func boolOperand(s slot, n Node) Node {
	if s.field {
		return Compare{Op: CmpEq, Left: n, Right: Literal{Value: true}}
	}
	return n
}

// numeric marks a field operand to be read as a number.
func numeric(s slot, n Node) Node {
	if ref, ok := n.(FieldRef); ok && s.field {
		ref.Numeric = true
		return ref
	}
	return n
}

func literalString(n Node) string {
	if lit, ok := n.(Literal); ok {
		if s, ok := lit.Value.(string); ok {
			return s
		}
	}
	return ""
}

func cmpOp(op Operator) CmpOp {
	switch op {
	case OpEq:
		return CmpEq
	case OpNe:
		return CmpNe
	case OpLt:
		return CmpLt
	case OpGt:
		return CmpGt
	case OpLte:
		return CmpLte
	case OpGte:
		return CmpGte
	default:
		panic("query: not a comparison operator: " + op.String())
	}
}

func arithOp(op Operator) ArithOp {
	switch op {
	case OpAdd:
		return ArithAdd
	case OpSub:
		return ArithSub
	case OpMul:
		return ArithMul
	case OpDiv:
		return ArithDiv
	case OpMod:
		return ArithMod
	default:
		panic("query: not an arithmetic operator: " + op.String())
	}
}
