package query

import "strings"

// Compile compiles a filter expression against a field schema.
//
// An empty or all-whitespace expression yields the empty filter. Every
// malformed input returns an error matching ErrInvalidQuery; no partial
// filter is ever returned.
func Compile(expression string, schema Schema) (Filter, error) {
	if schema == nil {
		return Filter{}, ErrNilSchema
	}
	if strings.TrimSpace(expression) == "" {
		return Filter{}, nil
	}

	tokens, err := Tokenize(expression, schema)
	if err != nil {
		return Filter{}, err
	}
	return Evaluate(tokens)
}

// Eval is Compile reduced to a validity flag. On failure the filter is
// empty and must not be executed as "match all".
func Eval(expression string, schema Schema) (bool, Filter) {
	if schema == nil {
		panic(ErrNilSchema)
	}
	f, err := Compile(expression, schema)
	if err != nil {
		return false, Filter{}
	}
	return true, f
}
