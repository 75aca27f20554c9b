package postgres

import (
	"fmt"

	"github.com/stockmaster/stockmaster/stockmaster/storage"
)

// Dialect renders filters with jsonb operators.
type Dialect struct{}

func (Dialect) FieldText(name string) string {
	return "(fields->>'" + name + "')"
}

func (d Dialect) FieldNumber(name string) string {
	return d.FieldText(name) + "::double precision"
}

func (d Dialect) FieldBool(name string) string {
	return d.FieldText(name) + "::boolean"
}

func (Dialect) Param(placeholder string, t storage.ParamType) string {
	switch t {
	case storage.ParamNumber:
		return placeholder + "::double precision"
	case storage.ParamBool:
		return placeholder + "::boolean"
	default:
		return placeholder + "::text"
	}
}

func (Dialect) DistinctFrom(left, right string) string {
	return fmt.Sprintf("(%s IS DISTINCT FROM %s)", left, right)
}

func (Dialect) ILike(expr, pattern string) string {
	return fmt.Sprintf(`(%s ILIKE %s ESCAPE '\')`, expr, pattern)
}

func (Dialect) ArrayContains(name, value string) string {
	return fmt.Sprintf("((fields->'%s') @> jsonb_build_array(%s))", name, value)
}

func (Dialect) Mod(operands func() (string, string)) string {
	left, right := operands()
	return fmt.Sprintf("mod((%s)::numeric, (%s)::numeric)", left, right)
}
