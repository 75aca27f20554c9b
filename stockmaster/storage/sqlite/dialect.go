package sqlite

import (
	"fmt"

	"github.com/stockmaster/stockmaster/stockmaster/storage"
)

// Dialect renders filters with the JSON1 functions built into SQLite.
type Dialect struct{}

func jsonPath(name string) string {
	return `'$."` + name + `"'`
}

func (Dialect) FieldText(name string) string {
	return "json_extract(fields, " + jsonPath(name) + ")"
}

func (d Dialect) FieldNumber(name string) string {
	return "CAST(" + d.FieldText(name) + " AS REAL)"
}

// FieldBool relies on json_extract returning 1 and 0 for JSON booleans.
func (d Dialect) FieldBool(name string) string {
	return d.FieldText(name)
}

func (Dialect) Param(placeholder string, t storage.ParamType) string {
	return placeholder
}

func (Dialect) DistinctFrom(left, right string) string {
	return fmt.Sprintf("(%s IS NOT %s)", left, right)
}

// ILike uses LIKE, which SQLite folds for ASCII letters only. lower()
// has the same limit without ICU, so non-ASCII letters match by exact
// case.
func (Dialect) ILike(expr, pattern string) string {
	return fmt.Sprintf(`(%s LIKE %s ESCAPE '\')`, expr, pattern)
}

func (Dialect) ArrayContains(name, value string) string {
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(fields, %s) WHERE json_each.value = %s)", jsonPath(name), value)
}

// Mod is computed as l - r * trunc(l / r). SQLite's % operator truncates
// both operands to integers first. Placeholders are positional, so the
// operands are rendered a second time rather than repeated.
func (Dialect) Mod(operands func() (string, string)) string {
	l1, r1 := operands()
	l2, r2 := operands()
	return fmt.Sprintf("(%s - %s * CAST(%s / %s AS INTEGER))", l1, r1, l2, r2)
}
