package storage

// ParamType is the SQL type a bound parameter is compared as.
type ParamType int

const (
	ParamText ParamType = iota
	ParamNumber
	ParamBool
)

// Dialect renders the backend-specific parts of a product filter. Field
// values live in the JSON "fields" column of the products table; names
// passed in are canonical field names and are safe to embed.
type Dialect interface {
	// FieldText yields the field as text, NULL when absent or null.
	FieldText(name string) string
	// FieldNumber yields the field as a double.
	FieldNumber(name string) string
	// FieldBool yields the field as a boolean.
	FieldBool(name string) string

	// Param types a placeholder where the backend cannot infer it.
	Param(placeholder string, t ParamType) string

	// DistinctFrom is a null-safe inequality.
	DistinctFrom(left, right string) string
	// ILike is a case-insensitive LIKE with '\' as escape character. How
	// far case folding reaches is up to the backend: SQLite folds ASCII
	// letters only, so 'ñ' does not match 'Ñ' there.
	ILike(expr, pattern string) string
	// ArrayContains tests membership of a text value in a JSON array field.
	ArrayContains(name, value string) string
	// Mod is the remainder of left divided by right, keeping the fraction
	// and the sign of left. operands renders both operands with fresh
	// parameters on every call, in text order, so an implementation may
	// call it more than once.
	Mod(operands func() (left, right string)) string
}
