package query

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is matched by every error caused by malformed input.
var ErrInvalidQuery = errors.New("invalid query")

// Error categories. Each one also matches ErrInvalidQuery.
var (
	ErrLexical   = errors.New("lexical error")
	ErrStructure = errors.New("structural error")
	ErrType      = errors.New("type error")
	ErrValue     = errors.New("invalid value")
)

// ErrNilSchema is returned when Compile is called without a field schema.
// It is an internal fault, not an invalid query.
var ErrNilSchema = errors.New("query: nil schema")

// ParseError provides detailed error information including position.
type ParseError struct {
	Pos     int    // rune offset in input, -1 when the error is not tied to a token
	Token   string // offending token text, if any
	Message string
	Err     error // category sentinel (for errors.Is)
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Token != "" {
		msg = fmt.Sprintf("%s (found %q)", msg, e.Token)
	}
	if e.Pos >= 0 {
		return fmt.Sprintf("%v at position %d: %s", e.Err, e.Pos, msg)
	}
	return fmt.Sprintf("%v: %s", e.Err, msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports every ParseError as an invalid query.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidQuery
}

func newParseError(pos int, tok string, err error, msgFmt string, args ...any) *ParseError {
	return &ParseError{
		Pos:     pos,
		Token:   tok,
		Message: fmt.Sprintf(msgFmt, args...),
		Err:     err,
	}
}
