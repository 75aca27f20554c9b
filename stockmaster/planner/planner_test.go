package planner

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockmaster/stockmaster/stockmaster/query"
	"github.com/stockmaster/stockmaster/stockmaster/storage/postgres"
	"github.com/stockmaster/stockmaster/stockmaster/storage/sqlbuilder"
	"github.com/stockmaster/stockmaster/stockmaster/storage/sqlite"
)

var testSchema = query.MapSchema{
	"price":     query.KindNum,
	"qty":       query.KindNum,
	"color":     query.KindStr,
	"tags":      query.KindArr,
	"active":    query.KindBool,
	"createdAt": query.KindDate,
}

func mustCompile(t *testing.T, expr string) query.Filter {
	t.Helper()
	f, err := query.Compile(expr, testSchema)
	require.NoError(t, err)
	return f
}

func TestDocumentGolden(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"comparison_and_equality", "price > 10 and color == 'red'"},
		{"includes_or_like", "tags includes 'sale' or color like 'a.b'"},
		{"not_boolean_field", "not active"},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Document(mustCompile(t, tt.expr))
			require.NoError(t, err)
			out, err := json.MarshalIndent(doc, "", "  ")
			require.NoError(t, err)
			g.Assert(t, tt.name, out)
		})
	}
}

func TestDocumentEmpty(t *testing.T) {
	doc, err := Document(query.Filter{})
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestDocumentArithmetic(t *testing.T) {
	doc, err := Document(mustCompile(t, "qty % 2 == 0"))
	require.NoError(t, err)

	and := doc["$expr"].(map[string]any)["$and"].([]any)
	require.Len(t, and, 2)
	assert.Equal(t, map[string]any{"$ne": []any{"$fields.qty", nil}}, and[0])
	assert.Equal(t, map[string]any{"$eq": []any{
		map[string]any{"$mod": []any{map[string]any{"$toDouble": "$fields.qty"}, 2.0}},
		0.0,
	}}, and[1])
}

func TestSQLSQLite(t *testing.T) {
	tests := []struct {
		expr string
		want string
		args []any
	}{
		{
			"price > 10 and color == 'red'",
			`((json_extract(fields, '$."price"') IS NOT NULL) AND ((CAST(json_extract(fields, '$."price"') AS REAL) > ?) AND (json_extract(fields, '$."color"') = ?)))`,
			[]any{10.0, "red"},
		},
		{
			"not active",
			`(NOT COALESCE((json_extract(fields, '$."active"') = ?), FALSE))`,
			[]any{true},
		},
		{
			"color != 'x'",
			`(json_extract(fields, '$."color"') IS NOT ?)`,
			[]any{"x"},
		},
		{
			"color like '50%_off'",
			`(json_extract(fields, '$."color"') LIKE ? ESCAPE '\')`,
			[]any{`%50\%\_off%`},
		},
		{
			"tags includes 'sale'",
			`EXISTS (SELECT 1 FROM json_each(fields, '$."tags"') WHERE json_each.value = ?)`,
			[]any{"sale"},
		},
		{
			"tags == null",
			`(json_extract(fields, '$."tags"') IS NULL)`,
			nil,
		},
		{
			"null == null",
			`TRUE`,
			nil,
		},
		{
			"createdAt < '2024-01-01'",
			`((json_extract(fields, '$."createdAt"') IS NOT NULL) AND (json_extract(fields, '$."createdAt"') < ?))`,
			[]any{"2024-01-01T00:00:00.000Z"},
		},
		{
			"qty % 2 == 1",
			`((json_extract(fields, '$."qty"') IS NOT NULL) AND ((CAST(json_extract(fields, '$."qty"') AS REAL) - NULLIF(?, 0) * CAST(CAST(json_extract(fields, '$."qty"') AS REAL) / NULLIF(?, 0) AS INTEGER)) = ?))`,
			[]any{2.0, 2.0, 1.0},
		},
		{
			"price / 2 > 1",
			`((json_extract(fields, '$."price"') IS NOT NULL) AND ((CAST(json_extract(fields, '$."price"') AS REAL) / NULLIF(?, 0)) > ?))`,
			[]any{2.0, 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
			got, err := SQL(mustCompile(t, tt.expr), sqlite.Dialect{}, b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.args == nil {
				assert.Empty(t, b.Args())
			} else {
				assert.Equal(t, tt.args, b.Args())
			}
		})
	}
}

func TestSQLPostgres(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{
			"price > 10 and color == 'red'",
			`(((fields->>'price') IS NOT NULL) AND (((fields->>'price')::double precision > $1::double precision) AND ((fields->>'color') = $2::text)))`,
		},
		{
			"tags includes 'sale'",
			`((fields->'tags') @> jsonb_build_array($1::text))`,
		},
		{
			"color like 'Re'",
			`((fields->>'color') ILIKE $1::text ESCAPE '\')`,
		},
		{
			"qty % 2 == 1",
			`(((fields->>'qty') IS NOT NULL) AND (mod(((fields->>'qty')::double precision)::numeric, (NULLIF($1::double precision, 0))::numeric) = $2::double precision))`,
		},
		{
			"price / 2 > 1",
			`(((fields->>'price') IS NOT NULL) AND (((fields->>'price')::double precision / NULLIF($1::double precision, 0)) > $2::double precision))`,
		},
		{
			"active",
			`((fields->>'active')::boolean = $1::boolean)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			b := sqlbuilder.New(sqlbuilder.PlaceholderDollar)
			got, err := SQL(mustCompile(t, tt.expr), postgres.Dialect{}, b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLEmptyFilter(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
	got, err := SQL(query.Filter{}, sqlite.Dialect{}, b)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", got)
	assert.Zero(t, b.Len())
}

func TestSQLBooleanLiteral(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
	got, err := SQL(mustCompile(t, "true and not false"), sqlite.Dialect{}, b)
	require.NoError(t, err)
	assert.Equal(t, "(TRUE AND (NOT COALESCE(FALSE, FALSE)))", got)
}

func TestLikeContains(t *testing.T) {
	assert.Equal(t, "%abc%", likeContains("abc"))
	assert.Equal(t, `%a\%b\_c\\d%`, likeContains(`a%b_c\d`))
	assert.Equal(t, "%%", likeContains(""))
}
