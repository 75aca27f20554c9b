package stockmaster

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stockmaster/stockmaster/stockmaster/query"
)

// StatsResult contains statistics for a numeric field
type StatsResult struct {
	Field  string   `json:"field"`
	Count  int64    `json:"count"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Avg    *float64 `json:"avg,omitempty"`
	Median *float64 `json:"median,omitempty"`
}

// ValueCount is a field value with the number of products holding it
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Stats computes statistics for an integer or float field over the
// products matching expression. Products without a value are skipped.
func (c *Catalog) Stats(ctx context.Context, inventory, field, expression string) (*StatsResult, error) {
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return nil, err
	}
	declared, spec, ok := inv.Schema.Lookup(field)
	if !ok {
		return nil, UnknownFieldError(field)
	}
	if spec.Type.Kind() != query.KindNum {
		return nil, TypeMismatch(declared, fmt.Sprintf("stats only available for integer/float fields, got %s", spec.Type))
	}

	_, where, b, err := c.compile(inv, expression)
	if err != nil {
		return nil, err
	}
	values := fmt.Sprintf("(SELECT %s AS v FROM products WHERE %s) AS s WHERE v IS NOT NULL",
		c.adapter.Dialect().FieldNumber(declared), where)

	result := &StatsResult{Field: declared}
	var minVal, maxVal, avgVal sql.NullFloat64
	err = c.db.QueryRowContext(ctx, "SELECT COUNT(v), MIN(v), MAX(v), AVG(v) FROM "+values, b.Args()...).
		Scan(&result.Count, &minVal, &maxVal, &avgVal)
	if err != nil {
		return nil, Wrap(ErrSQL, "query stats", err)
	}
	if minVal.Valid {
		result.Min = &minVal.Float64
	}
	if maxVal.Valid {
		result.Max = &maxVal.Float64
	}
	if avgVal.Valid {
		result.Avg = &avgVal.Float64
	}

	if result.Count > 0 {
		offset := (result.Count - 1) / 2
		stmt := "SELECT v FROM " + values + " ORDER BY v LIMIT 1 OFFSET " + b.Arg(offset)
		args := b.Args()

		var val1 float64
		if err := c.db.QueryRowContext(ctx, stmt, args...).Scan(&val1); err != nil {
			return nil, Wrap(ErrSQL, "query median", err)
		}
		median := val1
		// For even count, average middle two values
		if result.Count%2 == 0 {
			args2 := append(append([]any(nil), args[:len(args)-1]...), offset+1)
			var val2 float64
			if err := c.db.QueryRowContext(ctx, stmt, args2...).Scan(&val2); err != nil {
				return nil, Wrap(ErrSQL, "query median", err)
			}
			median = (val1 + val2) / 2
		}
		result.Median = &median
	}

	return result, nil
}

// DiscoverValues returns the most frequent values of a string field over
// the products matching expression, most frequent first.
func (c *Catalog) DiscoverValues(ctx context.Context, inventory, field, expression string, top int) ([]ValueCount, error) {
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return nil, err
	}
	declared, spec, ok := inv.Schema.Lookup(field)
	if !ok {
		return nil, UnknownFieldError(field)
	}
	if spec.Type != FieldString && spec.Type != FieldImage {
		return nil, TypeMismatch(declared, fmt.Sprintf("field is not a string field (type: %s)", spec.Type))
	}
	if top <= 0 {
		top = DefaultSearchLimit
	}

	_, where, b, err := c.compile(inv, expression)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf(`
		SELECT v, COUNT(*) AS n
		FROM (SELECT %s AS v FROM products WHERE %s) AS s
		WHERE v IS NOT NULL
		GROUP BY v
		ORDER BY n DESC, v
		LIMIT %s`, c.adapter.Dialect().FieldText(declared), where, b.Arg(top))

	rows, err := c.db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, Wrap(ErrSQL, "discover values", err)
	}
	defer rows.Close()

	var out []ValueCount
	for rows.Next() {
		var vc ValueCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			return nil, Wrap(ErrSQL, "scan value", err)
		}
		out = append(out, vc)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap(ErrSQL, "iterate values", err)
	}
	return out, nil
}
