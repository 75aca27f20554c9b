// Package query compiles filter expressions over per-inventory typed
// fields into predicate trees.
//
// The language:
//
//	expr           := term (('and' | 'or') term)*
//	term           := 'not'? comparison
//	comparison     := additive (op additive)?
//	op             := '==' | '!=' | '<' | '>' | '<=' | '>=' | 'like' | 'includes'
//	additive       := multiplicative (('+' | '-') multiplicative)*
//	multiplicative := atom (('*' | '/' | '%') atom)*
//	atom           := NUMBER | STRING | 'true' | 'false' | 'null' | FIELD | '(' expr ')'
//
// Strings are single-quoted. Keywords and field names are
// case-insensitive. Compilation is a single operator-precedence pass
// that emits predicate nodes while it reduces; there is no separate
// syntax tree.
//
// Numeric and datetime fields used in arithmetic or comparisons are
// guarded: the compiled filter additionally requires them to be non-null.
//
// Compile and Eval are pure functions and safe for concurrent use.
package query
