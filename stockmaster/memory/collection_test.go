package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/stockmaster/stockmaster/stockmaster"
)

var schema = stockmaster.Schema{Fields: map[string]stockmaster.FieldSpec{
	"name":   {Type: stockmaster.FieldString},
	"price":  {Type: stockmaster.FieldFloat},
	"tags":   {Type: stockmaster.FieldArray},
	"active": {Type: stockmaster.FieldBoolean},
}}

func seeded(t *testing.T) *Collection {
	t.Helper()
	c := New(schema, nil)
	for _, p := range []stockmaster.Product{
		{ID: "a", Fields: map[string]any{"name": "Lamp", "price": 30.0, "tags": []any{"home"}, "active": true}},
		{ID: "b", Fields: map[string]any{"name": "Desk", "price": 120.0, "active": false}},
		{ID: "c", Fields: map[string]any{"Name": "Mug"}},
	} {
		require.NoError(t, c.Put(p))
	}
	return c
}

func ids(ps []stockmaster.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	c := seeded(t)

	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"a", "b", "c"}},
		{"price > 50", []string{"b"}},
		{"price == null", []string{"c"}},
		{"active", []string{"a"}},
		{"not active", []string{"b", "c"}},
		{"tags includes 'home'", []string{"a"}},
		{"name like 'mU'", []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := c.Filter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterRejectsInvalid(t *testing.T) {
	c := seeded(t)
	got, err := c.Filter("price > 'x'")
	assert.True(t, stockmaster.IsKind(err, stockmaster.ErrQueryRejected))
	assert.Nil(t, got)
}

func TestPutUnknownField(t *testing.T) {
	c := New(schema, nil)
	err := c.Put(stockmaster.Product{ID: "x", Fields: map[string]any{"colour": "red"}})
	assert.True(t, stockmaster.IsKind(err, stockmaster.ErrUnknownField))
	assert.Zero(t, c.Len())
}

func TestDelete(t *testing.T) {
	c := seeded(t)
	removed, err := c.Delete("price != null")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, removed)
	assert.Equal(t, 1, c.Len())

	left, err := c.Filter("")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(left))
}

func TestConcurrentFilter(t *testing.T) {
	c := seeded(t)
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		i := i
		g.Go(func() error {
			if err := c.Put(stockmaster.Product{ID: fmt.Sprintf("p%d", i), Fields: map[string]any{"price": float64(i)}}); err != nil {
				return err
			}
			_, err := c.Filter("price >= 0")
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 11, c.Len())
}
