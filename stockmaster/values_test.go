package stockmaster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateValue(t *testing.T) {
	tests := []struct {
		typ  FieldType
		raw  string
		want any
	}{
		{FieldString, "hello", "hello"},
		{FieldString, "", nil},
		{FieldString, "null", "null"},
		{FieldImage, "images/a.png", "images/a.png"},
		{FieldInteger, "42", int64(42)},
		{FieldInteger, "-7", int64(-7)},
		{FieldInteger, "NULL", nil},
		{FieldFloat, "2.5", 2.5},
		{FieldFloat, "3", 3.0},
		{FieldBoolean, "True", true},
		{FieldBoolean, "false", false},
		{FieldDatetime, "2024-05-01", "2024-05-01T00:00:00.000Z"},
		{FieldDatetime, "2024-05-01T10:30:00+02:00", "2024-05-01T08:30:00.000Z"},
		{FieldDatetime, "2024-05-01T10:30:00.25Z", "2024-05-01T10:30:00.250Z"},
		{FieldArray, `["a","b"]`, []string{"a", "b"}},
		{FieldArray, `[]`, []string{}},
		{FieldArray, "null", nil},
		{"Integer", "5", int64(5)},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.raw, func(t *testing.T) {
			got, err := ValidateValue(tt.typ, tt.raw)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateValueRejects(t *testing.T) {
	tests := []struct {
		typ FieldType
		raw string
	}{
		{FieldInteger, "1.5"},
		{FieldInteger, "ten"},
		{FieldInteger, ""},
		{FieldInteger, "99999999999999999999"},
		{FieldFloat, "1e3"},
		{FieldFloat, ".5"},
		{FieldBoolean, "yes"},
		{FieldDatetime, "May 1st"},
		{FieldArray, `["a", 1]`},
		{FieldArray, `{"a":1}`},
		{FieldArray, "a,b"},
		{"money", "5"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.raw, func(t *testing.T) {
			_, err := ValidateValue(tt.typ, tt.raw)
			assert.True(t, IsKind(err, ErrTypeMismatch), "got %v", err)
		})
	}
}
