package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func notNull(name string, kind Kind) Node {
	return Compare{Op: CmpNe, Left: FieldRef{Name: name, Kind: kind}, Right: Literal{Value: nil}}
}

func num(name string) FieldRef {
	return FieldRef{Name: name, Kind: KindNum, Numeric: true}
}

func TestCompileScenarios(t *testing.T) {
	schema := MapSchema{
		"price":  KindNum,
		"color":  KindStr,
		"tags":   KindArr,
		"active": KindBool,
	}

	t.Run("comparison and string equality", func(t *testing.T) {
		ok, f := Eval("price > 10 and color == 'red'", schema)
		require.True(t, ok)
		want := And{
			Left: notNull("price", KindNum),
			Right: And{
				Left:  Compare{Op: CmpGt, Left: num("price"), Right: Literal{Value: 10.0}},
				Right: Compare{Op: CmpEq, Left: FieldRef{Name: "color", Kind: KindStr}, Right: Literal{Value: "red"}},
			},
		}
		assert.Equal(t, want, f.Root)
		assert.Equal(t, "((price != null) and ((num(price) > 10) and (color == 'red')))", f.String())
	})

	t.Run("unbalanced parenthesis", func(t *testing.T) {
		ok, f := Eval("(active", schema)
		assert.False(t, ok)
		assert.True(t, f.IsEmpty())
	})

	t.Run("array membership", func(t *testing.T) {
		ok, f := Eval("tags includes 'sale'", schema)
		require.True(t, ok)
		assert.Equal(t, Contains{Field: FieldRef{Name: "tags", Kind: KindArr}, Value: "sale"}, f.Root)

		ok, _ = Eval("'sale' includes tags", schema)
		assert.False(t, ok)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		ok, _ := Eval("nonexistentfield == 1", schema)
		assert.False(t, ok)
	})

	t.Run("negated boolean field", func(t *testing.T) {
		ok, f := Eval("not active", schema)
		require.True(t, ok)
		want := Not{Inner: Compare{Op: CmpEq, Left: FieldRef{Name: "active", Kind: KindBool}, Right: Literal{Value: true}}}
		assert.Equal(t, want, f.Root)
	})

	t.Run("like on a number field", func(t *testing.T) {
		ok, _ := Eval("price like 'x'", schema)
		assert.False(t, ok)
	})
}

func TestCompileEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n "} {
		ok, f := Eval(input, testSchema)
		assert.True(t, ok)
		assert.Equal(t, Filter{}, f)
		assert.Equal(t, "true", f.String())
	}
}

func TestCompileNilSchema(t *testing.T) {
	_, err := Compile("price > 1", nil)
	assert.ErrorIs(t, err, ErrNilSchema)
	assert.Panics(t, func() { Eval("price > 1", nil) })
}

func TestTypeRules(t *testing.T) {
	tests := []struct {
		expr  string
		valid bool
	}{
		// arithmetic
		{"price + 1 > 0", true},
		{"price % qty == 1", true},
		{"color + 1 > 0", false},
		{"active * 2 > 0", false},
		{"createdAt - 1 > 0", false},

		// ordering
		{"price < qty", true},
		{"createdAt >= '2024-01-01'", true},
		{"'2024-01-01T10:00:00Z' < createdAt", true},
		{"'2024-01-01' < '2024-02-01'", true},
		{"createdAt < 5", false},
		{"color < 'b'", false},
		{"tags > 1", false},
		{"active < true", false},

		// equality
		{"active == false", true},
		{"active != active", true},
		{"price == 3.5", true},
		{"color != 'x'", true},
		{"photo == 'key.png'", true},
		{"createdAt == '2024-01-01T00:00:00.000Z'", true},
		{"price == null", true},
		{"null != tags", true},
		{"null == null", true},
		{"price == '3'", false},
		{"color == 1", false},
		{"tags == 'x'", false},
		{"active == 1", false},

		// like
		{"color like 'red'", true},
		{"photo like 'png'", true},
		{"'red' like color", false},
		{"color like color", false},
		{"tags like 'x'", false},

		// includes
		{"tags includes 'x'", true},
		{"tags includes 1", false},
		{"color includes 'x'", false},
		{"tags includes tags", false},

		// boolean
		{"active and price > 1", true},
		{"active or not active", true},
		{"not not active", true},
		{"active and price", false},
		{"not price", false},
		{"color or active", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Compile(tt.expr, testSchema)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrType)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestStructureErrors(t *testing.T) {
	tests := []string{
		"()",
		"(active",
		"active)",
		"((active)",
		"price >",
		"> 1",
		"active active",
		"price > 1 1",
		"not",
		"active and",
		"> price 1",
		"price 1 >",
		"active not",
		"active active and",
		"and active active",
		"price > ( ) 1",
		"1 2 + 3 ==",
		"price > 1 and active or",
		"- price > 1",
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := Compile(expr, testSchema)
			assert.ErrorIs(t, err, ErrStructure)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestValueErrors(t *testing.T) {
	for _, expr := range []string{
		"createdAt > 'yesterday'",
		"'2024-13-01' < createdAt",
		"createdAt == '2024-01-01 10:00'",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Compile(expr, testSchema)
			assert.ErrorIs(t, err, ErrValue)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestNonBooleanResult(t *testing.T) {
	for _, expr := range []string{"price", "'red'", "price + 1", "null", "tags"} {
		_, err := Compile(expr, testSchema)
		assert.ErrorIs(t, err, ErrType, expr)
	}
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3 == 7", "((1 + (2 * 3)) == 7)"},
		{"10 - 2 - 3 == 5", "(((10 - 2) - 3) == 5)"},
		{"(1 + 2) * 3 == 9", "(((1 + 2) * 3) == 9)"},
		{"8 / 4 % 3 == 2", "(((8 / 4) % 3) == 2)"},
		{"active or active and active", "(((active == true) or (active == true)) and (active == true))"},
		{"not active and active", "((not (active == true)) and (active == true))"},
		{"not (active and active)", "(not ((active == true) and (active == true)))"},
		{"1 - -1 == 2", "((1 - -1) == 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Compile(tt.expr, testSchema)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.String())
		})
	}
}

func TestGuards(t *testing.T) {
	t.Run("both sides guarded, own field first", func(t *testing.T) {
		f, err := Compile("price > qty", testSchema)
		require.NoError(t, err)
		want := And{
			Left: notNull("qty", KindNum),
			Right: And{
				Left:  notNull("price", KindNum),
				Right: Compare{Op: CmpGt, Left: num("price"), Right: num("qty")},
			},
		}
		assert.Equal(t, want, f.Root)
	})

	t.Run("guard is an outer conjunct", func(t *testing.T) {
		f, err := Compile("active or price + 1 > 5", testSchema)
		require.NoError(t, err)
		assert.Equal(t, "((price != null) and ((active == true) or ((num(price) + 1) > 5)))", f.String())
	})

	t.Run("guard wraps negation", func(t *testing.T) {
		f, err := Compile("not price > 1", testSchema)
		require.NoError(t, err)
		assert.Equal(t, "((price != null) and (not (num(price) > 1)))", f.String())
	})

	t.Run("one guard per field", func(t *testing.T) {
		f, err := Compile("price > 1 and price < 5", testSchema)
		require.NoError(t, err)
		assert.Equal(t, "((price != null) and ((num(price) > 1) and (num(price) < 5)))", f.String())
	})

	t.Run("datetime field", func(t *testing.T) {
		f, err := Compile("createdAt >= '2024-03-01'", testSchema)
		require.NoError(t, err)
		want := And{
			Left: notNull("createdAt", KindDate),
			Right: Compare{
				Op:    CmpGte,
				Left:  FieldRef{Name: "createdAt", Kind: KindDate},
				Right: Literal{Value: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			},
		}
		assert.Equal(t, want, f.Root)
	})

	t.Run("no guard on null comparison", func(t *testing.T) {
		f, err := Compile("price == null", testSchema)
		require.NoError(t, err)
		assert.Equal(t, Compare{Op: CmpEq, Left: FieldRef{Name: "price", Kind: KindNum}, Right: Literal{Value: nil}}, f.Root)
	})

	t.Run("no guard on strings", func(t *testing.T) {
		f, err := Compile("color != 'x'", testSchema)
		require.NoError(t, err)
		assert.Equal(t, "(color != 'x')", f.String())
	})
}

func TestBooleanSugar(t *testing.T) {
	f, err := Compile("active", testSchema)
	require.NoError(t, err)
	assert.Equal(t, Compare{Op: CmpEq, Left: FieldRef{Name: "active", Kind: KindBool}, Right: Literal{Value: true}}, f.Root)

	f, err = Compile("active and (price > 1 or active)", testSchema)
	require.NoError(t, err)
	assert.Equal(t, "((price != null) and ((active == true) and ((num(price) > 1) or (active == true))))", f.String())

	// Comparisons keep the bare field.
	f, err = Compile("active == false", testSchema)
	require.NoError(t, err)
	assert.Equal(t, "(active == false)", f.String())
}

func TestLikeEscapesPattern(t *testing.T) {
	f, err := Compile("COLOR LIKE 'a.b*(c)'", testSchema)
	require.NoError(t, err)
	assert.Equal(t, Match{
		Field:   FieldRef{Name: "color", Kind: KindStr},
		Text:    "a.b*(c)",
		Pattern: `a\.b\*\(c\)`,
	}, f.Root)
}

func TestDateLiterals(t *testing.T) {
	f, err := Compile("'2024-01-01' < '2024-01-01T00:00:00.5+02:00'", testSchema)
	require.NoError(t, err)
	cmp, ok := f.Root.(Compare)
	require.True(t, ok)
	assert.Equal(t, Literal{Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, cmp.Left)
	assert.Equal(t, Literal{Value: time.Date(2023, 12, 31, 22, 0, 0, 500000000, time.UTC)}, cmp.Right)

	// Two string literals under equality compare as strings.
	f, err = Compile("'2024-01-01' == '2024-01-01'", testSchema)
	require.NoError(t, err)
	assert.Equal(t, Compare{Op: CmpEq, Left: Literal{Value: "2024-01-01"}, Right: Literal{Value: "2024-01-01"}}, f.Root)
}

var validExpressions = []string{
	"price > 10 and color == 'red'",
	"tags includes 'sale'",
	"not active",
	"active",
	"price > qty",
	"active or price + 1 > 5",
	"(price * 2) % 3 != 0 and createdAt < '2025-01-01'",
	"color like 'bl' or photo == null",
	"not (active and tags includes 'x')",
}

func TestParenWrappingInvariance(t *testing.T) {
	for _, expr := range validExpressions {
		plain, err := Compile(expr, testSchema)
		require.NoError(t, err, expr)

		wrapped, err := Compile("("+expr+")", testSchema)
		require.NoError(t, err, expr)
		assert.Equal(t, plain, wrapped, expr)

		double, err := Compile("(("+expr+"))", testSchema)
		require.NoError(t, err, expr)
		assert.Equal(t, plain, double, expr)
	}
}

func TestDeterminism(t *testing.T) {
	for _, expr := range validExpressions {
		first, err := Compile(expr, testSchema)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := Compile(expr, testSchema)
			require.NoError(t, err)
			assert.Equal(t, first, again)
			assert.Equal(t, first.String(), again.String())
		}
	}
}

func TestConcurrentCompile(t *testing.T) {
	want := make([]Filter, len(validExpressions))
	for i, expr := range validExpressions {
		f, err := Compile(expr, testSchema)
		require.NoError(t, err)
		want[i] = f
	}

	var g errgroup.Group
	for w := 0; w < 16; w++ {
		g.Go(func() error {
			for i, expr := range validExpressions {
				f, err := Compile(expr, testSchema)
				if err != nil {
					return err
				}
				if f.String() != want[i].String() {
					return errors.New("filter differs for " + expr)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Compile("price like 'x'", testSchema)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "like", pe.Token)
	assert.Contains(t, err.Error(), "type error")
	assert.Contains(t, err.Error(), "(NUM field, STR literal)")
}

func TestMisplacedToken(t *testing.T) {
	for _, expr := range validExpressions {
		tokens, err := Tokenize(expr, testSchema)
		require.NoError(t, err, expr)
		if len(tokens) < 2 {
			continue
		}
		n := len(tokens)

		firstToEnd := append(append([]Token{}, tokens[1:]...), tokens[0])
		lastToFront := append([]Token{tokens[n-1]}, tokens[:n-1]...)

		for name, moved := range map[string][]Token{"first to end": firstToEnd, "last to front": lastToFront} {
			_, err := Evaluate(moved)
			assert.ErrorIs(t, err, ErrStructure, "%s: %s", name, expr)
		}
	}
}

func TestParseErrorHidesGuard(t *testing.T) {
	_, err := Compile("price > 1 and active or", testSchema)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "or", pe.Token)
	assert.NotContains(t, err.Error(), "guard")
	assert.NotContains(t, err.Error(), "&&")
}
