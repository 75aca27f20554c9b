package query

import (
	"strconv"
	"unicode"
)

// Token represents a lexical token
type Token struct {
	Kind TokenKind
	Text string // source text
	Pos  int    // rune offset in the input

	Num   float64
	Str   string
	Bool  bool
	Op    Operator
	Field Field
}

// TokenKind is the type of token
type TokenKind int

const (
	TokString TokenKind = iota
	TokNumber
	TokBool
	TokNull
	TokField
	TokOperator
	TokLParen
	TokRParen
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokString:
		return "String"
	case TokNumber:
		return "Number"
	case TokBool:
		return "Bool"
	case TokNull:
		return "Null"
	case TokField:
		return "Field"
	case TokOperator:
		return "Operator"
	case TokLParen:
		return "LParen"
	case TokRParen:
		return "RParen"
	case TokEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Lexer tokenizes a query expression against a field schema
type Lexer struct {
	input  []rune
	pos    int
	schema Schema

	// expectOperand is true where a '-' followed by a digit starts a
	// negative number rather than a subtraction.
	expectOperand bool
}

// NewLexer creates a new lexer for the input string
func NewLexer(input string, schema Schema) *Lexer {
	return &Lexer{
		input:         []rune(input),
		schema:        schema,
		expectOperand: true,
	}
}

// Tokenize scans the whole expression. Any token that is not a literal,
// a schema field, an operator or a parenthesis fails the whole input.
func Tokenize(input string, schema Schema) ([]Token, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	lexer := NewLexer(input, schema)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokEOF {
			break
		}
		tokens = append(tokens, tok)
	}

	return tokens, nil
}

// Next returns the next token
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Pos: l.pos}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == '\'':
		return l.emit(l.scanString())
	case isIdentStart(ch):
		return l.emit(l.scanIdent())
	case isDigit(ch) || (ch == '-' && l.expectOperand && isDigit(l.peek(1))):
		return l.emit(l.scanNumber())
	case ch == '(':
		l.pos++
		return l.emit(Token{Kind: TokLParen, Text: "(", Pos: start}, nil)
	case ch == ')':
		l.pos++
		return l.emit(Token{Kind: TokRParen, Text: ")", Pos: start}, nil)
	}

	for _, so := range symbolOperators {
		if l.hasPrefix(so.text) {
			l.pos += len(so.text)
			return l.emit(Token{Kind: TokOperator, Text: so.text, Pos: start, Op: so.op}, nil)
		}
	}

	return Token{}, newParseError(start, string(ch), ErrLexical, "unexpected character")
}

func (l *Lexer) emit(tok Token, err error) (Token, error) {
	if err != nil {
		return Token{}, err
	}
	switch tok.Kind {
	case TokOperator, TokLParen:
		l.expectOperand = true
	default:
		l.expectOperand = false
	}
	return tok, nil
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

func (l *Lexer) hasPrefix(s string) bool {
	for i, r := range []rune(s) {
		if l.peek(i) != r {
			return false
		}
	}
	return true
}

// scanString reads a single-quoted literal. Quotes cannot be escaped.
func (l *Lexer) scanString() (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote

	for l.pos < len(l.input) {
		if l.input[l.pos] == '\'' {
			l.pos++ // consume closing quote
			text := string(l.input[start:l.pos])
			return Token{Kind: TokString, Text: text, Pos: start, Str: text[1 : len(text)-1]}, nil
		}
		l.pos++
	}

	return Token{}, newParseError(start, string(l.input[start:]), ErrLexical, "unterminated string")
}

func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos

	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	// A fraction needs at least one digit after the dot.
	if l.pos < len(l.input) && l.input[l.pos] == '.' && isDigit(l.peek(1)) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	text := string(l.input[start:l.pos])
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, newParseError(start, text, ErrLexical, "invalid number")
	}

	return Token{Kind: TokNumber, Text: text, Pos: start, Num: num}, nil
}

func (l *Lexer) scanIdent() (Token, error) {
	start := l.pos

	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}

	text := string(l.input[start:l.pos])
	word := Fold(text)

	// Reserved words win over schema fields.
	switch word {
	case kwTrue, kwFalse:
		return Token{Kind: TokBool, Text: text, Pos: start, Bool: word == kwTrue}, nil
	case kwNull:
		return Token{Kind: TokNull, Text: text, Pos: start}, nil
	}
	if op, ok := keywordOperators[word]; ok {
		return Token{Kind: TokOperator, Text: text, Pos: start, Op: op}, nil
	}

	field, ok := l.schema.Lookup(text)
	if !ok {
		return Token{}, newParseError(start, text, ErrLexical, "unknown identifier")
	}
	return Token{Kind: TokField, Text: text, Pos: start, Field: field}, nil
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

func isIdentChar(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
