package stockmaster

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/spf13/cast"

	"github.com/stockmaster/stockmaster/stockmaster/query"
)

var (
	integerRe = regexp.MustCompile(`^-?\d+$`)
	floatRe   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// ValidateValue converts a raw product value to its stored form.
//
// A nil result means the field is set to null: an empty string field, or
// the word null (any case) for the other types. Datetimes are stored in
// the canonical query.DateLayout form in UTC so that they order as text.
func ValidateValue(t FieldType, raw string) (any, error) {
	if parsed, ok := ParseFieldType(string(t)); ok {
		t = parsed
	}

	switch t {
	case FieldString, FieldImage:
		if raw == "" {
			return nil, nil
		}
		return raw, nil
	}

	if query.Fold(raw) == "null" {
		return nil, nil
	}

	switch t {
	case FieldInteger:
		if integerRe.MatchString(raw) {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return n, nil
			}
		}
	case FieldFloat:
		if floatRe.MatchString(raw) {
			if f, err := cast.ToFloat64E(raw); err == nil {
				return f, nil
			}
		}
	case FieldDatetime:
		if ts, ok := query.ParseDate(raw); ok {
			return query.FormatDate(ts), nil
		}
	case FieldBoolean:
		switch query.Fold(raw) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	case FieldArray:
		var items []any
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			if out, err := cast.ToStringSliceE(items); err == nil && allStrings(items) {
				return out, nil
			}
		}
	}

	return nil, TypeMismatch("", "value "+strconv.Quote(raw)+" is not a valid "+string(t))
}

func allStrings(items []any) bool {
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}
