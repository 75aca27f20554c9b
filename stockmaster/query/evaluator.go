package query

// slot is the type-stack entry of an operand.
type slot struct {
	kind  Kind
	field bool
}

func (s slot) String() string {
	if s.field {
		return s.kind.String() + " field"
	}
	return s.kind.String() + " literal"
}

// evaluator is an operator-precedence driver that reduces operands as
// soon as precedence allows instead of building a syntax tree first.
// types and values are parallel stacks.
type evaluator struct {
	types  []slot
	values []Node
	opers  []Operator

	guarded map[string]bool

	// expectOperand is true where the grammar needs an operand next: at
	// the start, after a binary operator, after "not" and after "(".
	expectOperand bool
}

// Evaluate compiles a token stream into a predicate tree.
func Evaluate(tokens []Token) (Filter, error) {
	e := &evaluator{guarded: make(map[string]bool), expectOperand: true}

	// The cursor only moves when a token is consumed; a reduction leaves
	// it in place so the same token is looked at again.
	cursor := 0
	for cursor < len(tokens) {
		consumed, err := e.step(tokens[cursor])
		if err != nil {
			return Filter{}, err
		}
		if consumed {
			cursor++
		}
	}

	if e.expectOperand {
		if len(tokens) == 0 {
			return Filter{}, newParseError(-1, "", ErrStructure, "missing operand")
		}
		last := tokens[len(tokens)-1]
		return Filter{}, newParseError(last.Pos, last.Text, ErrStructure, "missing operand")
	}

	for len(e.types) > 1 || len(e.opers) > 0 {
		if err := e.reduce(-1); err != nil {
			return Filter{}, err
		}
	}

	return e.finish()
}

func (e *evaluator) step(tok Token) (bool, error) {
	if err := e.checkOrder(tok); err != nil {
		return false, err
	}

	switch tok.Kind {
	case TokString:
		e.push(slot{kind: KindStr}, Literal{Value: tok.Str})
	case TokNumber:
		e.push(slot{kind: KindNum}, Literal{Value: tok.Num})
	case TokBool:
		e.push(slot{kind: KindBool}, Literal{Value: tok.Bool})
	case TokNull:
		e.push(slot{kind: KindNull}, Literal{Value: nil})
	case TokField:
		e.push(slot{kind: tok.Field.Kind, field: true}, FieldRef{Name: tok.Field.Name, Kind: tok.Field.Kind})
	case TokLParen:
		e.opers = append(e.opers, opParen)
		e.expectOperand = true
		return true, nil
	case TokRParen:
		if n := len(e.opers); n > 0 && e.opers[n-1] == opParen {
			e.opers = e.opers[:n-1]
			e.expectOperand = false
			return true, nil
		}
		if !e.openParen() {
			return false, newParseError(tok.Pos, tok.Text, ErrStructure, "unbalanced parenthesis")
		}
		return false, e.reduce(tok.Pos)
	case TokOperator:
		if !e.shouldPush(tok.Op) {
			return false, e.reduce(tok.Pos)
		}
		e.opers = append(e.opers, tok.Op)
		e.expectOperand = true
		return true, nil
	default:
		return false, newParseError(tok.Pos, tok.Text, ErrStructure, "unexpected token")
	}
	e.expectOperand = false
	return true, nil
}

// checkOrder rejects a token that cannot follow the previous one: operands
// and binary operators must alternate, "not" and "(" stand in operand
// position, ")" in operator position. Reductions leave the expected
// position unchanged.
func (e *evaluator) checkOrder(tok Token) error {
	var wantOperand bool
	switch tok.Kind {
	case TokString, TokNumber, TokBool, TokNull, TokField, TokLParen:
		wantOperand = true
	case TokOperator:
		wantOperand = tok.Op.Unary()
	case TokRParen:
		wantOperand = false
	default:
		return nil
	}

	switch {
	case wantOperand && !e.expectOperand:
		return newParseError(tok.Pos, tok.Text, ErrStructure, "missing operator")
	case !wantOperand && e.expectOperand:
		return newParseError(tok.Pos, tok.Text, ErrStructure, "missing operand")
	}
	return nil
}

// shouldPush reports whether op goes on the stack as is. A prefix
// operator has no left operand to reduce, so it is always pushed.
func (e *evaluator) shouldPush(op Operator) bool {
	if op.Unary() || len(e.opers) == 0 {
		return true
	}
	top := e.opers[len(e.opers)-1]
	return top == opParen || op.Precedence() > top.Precedence()
}

func (e *evaluator) openParen() bool {
	for _, op := range e.opers {
		if op == opParen {
			return true
		}
	}
	return false
}

func (e *evaluator) finish() (Filter, error) {
	if len(e.types) != 1 {
		return Filter{}, newParseError(-1, "", ErrStructure, "missing operand")
	}
	s, n := e.types[0], e.values[0]
	if s.kind != KindBool {
		return Filter{}, newParseError(-1, "", ErrType, "expression yields %s, not a boolean", s)
	}
	return Filter{Root: boolOperand(s, n)}, nil
}

func (e *evaluator) push(s slot, n Node) {
	e.types = append(e.types, s)
	e.values = append(e.values, n)
}

func (e *evaluator) pop() (slot, Node) {
	i := len(e.types) - 1
	s, n := e.types[i], e.values[i]
	e.types, e.values = e.types[:i], e.values[:i]
	return s, n
}

func (e *evaluator) popOper() Operator {
	i := len(e.opers) - 1
	op := e.opers[i]
	e.opers = e.opers[:i]
	return op
}

// guard puts "field != null" at the bottom of the stacks, joined by the
// lowest-precedence conjunction, so it ends up as an outer conjunct of
// the whole filter. A field is guarded at most once.
func (e *evaluator) guard(s slot, n Node) {
	ref, ok := n.(FieldRef)
	if !s.field || !ok || e.guarded[ref.Name] {
		return
	}
	e.guarded[ref.Name] = true

	check := Compare{Op: CmpNe, Left: FieldRef{Name: ref.Name, Kind: ref.Kind}, Right: Literal{Value: nil}}
	e.types = append([]slot{{kind: KindBool}}, e.types...)
	e.values = append([]Node{check}, e.values...)
	e.opers = append([]Operator{opGuard}, e.opers...)
}
