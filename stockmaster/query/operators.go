package query

import (
	"strings"

	"golang.org/x/text/cases"
)

// Operator is a query operator. The set is closed.
type Operator int

const (
	OpMul Operator = iota
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpEq
	OpNe
	OpLt
	OpGt
	OpLte
	OpGte
	OpLike
	OpIncludes
	OpNot
	OpAnd
	OpOr

	// opGuard joins an injected not-null guard to the rest of the filter.
	// It has no spelling and cannot appear in input.
	opGuard
	// opParen marks an open parenthesis on the operator stack.
	opParen
)

type opClass int

const (
	classArith opClass = iota
	classOrder
	classEquality
	classLike
	classIncludes
	classUnaryBool
	classBinaryBool
	classGuard
	classParen
)

type opInfo struct {
	symbol string
	prec   int
	unary  bool
	class  opClass
}

var operatorTable = [...]opInfo{
	OpMul:      {"*", 4, false, classArith},
	OpDiv:      {"/", 4, false, classArith},
	OpMod:      {"%", 4, false, classArith},
	OpAdd:      {"+", 3, false, classArith},
	OpSub:      {"-", 3, false, classArith},
	OpEq:       {"==", 2, false, classEquality},
	OpNe:       {"!=", 2, false, classEquality},
	OpLt:       {"<", 2, false, classOrder},
	OpGt:       {">", 2, false, classOrder},
	OpLte:      {"<=", 2, false, classOrder},
	OpGte:      {">=", 2, false, classOrder},
	OpLike:     {"like", 2, false, classLike},
	OpIncludes: {"includes", 2, false, classIncludes},
	OpNot:      {"not", 1, true, classUnaryBool},
	OpAnd:      {"and", 0, false, classBinaryBool},
	OpOr:       {"or", 0, false, classBinaryBool},
	opGuard:    {"", -1, false, classGuard},
	opParen:    {"(", 0, false, classParen},
}

// String returns the operator's spelling. The injected guard conjunction
// has none.
func (o Operator) String() string {
	return operatorTable[o].symbol
}

// Precedence returns the binding strength of o; higher binds tighter.
func (o Operator) Precedence() int { return operatorTable[o].prec }

// Unary reports whether o takes a single operand.
func (o Operator) Unary() bool { return operatorTable[o].unary }

func (o Operator) class() opClass { return operatorTable[o].class }

// symbolOperators is ordered longest first so that "<=" wins over "<".
var symbolOperators = []struct {
	text string
	op   Operator
}{
	{"==", OpEq},
	{"!=", OpNe},
	{"<=", OpLte},
	{">=", OpGte},
	{"<", OpLt},
	{">", OpGt},
	{"+", OpAdd},
	{"-", OpSub},
	{"*", OpMul},
	{"/", OpDiv},
	{"%", OpMod},
}

var keywordOperators = map[string]Operator{
	"like":     OpLike,
	"includes": OpIncludes,
	"not":      OpNot,
	"and":      OpAnd,
	"or":       OpOr,
}

const (
	kwTrue  = "true"
	kwFalse = "false"
	kwNull  = "null"
)

// Fold returns the case-insensitive form of an identifier. A Caser keeps
// state, so one is made per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// IsReserved reports whether name is a literal or operator keyword and
// therefore can never be used as a field name.
func IsReserved(name string) bool {
	switch f := Fold(strings.TrimSpace(name)); f {
	case kwTrue, kwFalse, kwNull:
		return true
	default:
		_, ok := keywordOperators[f]
		return ok
	}
}
