package stockmaster_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockmaster/stockmaster/stockmaster"
	"github.com/stockmaster/stockmaster/stockmaster/memory"
)

// Products stored in SQLite and the same products held in memory must
// select the same rows for any expression.
func TestExecutorsAgree(t *testing.T) {
	c, _ := newCatalog(t)
	seedShop(t, c)
	ctx := context.Background()

	all, err := c.Search(ctx, "shop", "", stockmaster.SearchOptions{Limit: 100, ShowHidden: true})
	require.NoError(t, err)
	require.Len(t, all.Products, 4)

	coll := memory.New(shopSchema, nil)
	for _, p := range all.Products {
		require.NoError(t, coll.Put(p))
	}

	tests := []struct {
		expr string
		want []string
	}{
		{"price % 7.5 == 2.5", []string{"Red Shirt"}},
		{"price % 7.5 == 0.5", []string{"Blue Jeans", "Green Hat"}},
		{"qty % 2 == 0", []string{"Red Shirt", "Blue Jeans", "Green Hat"}},
		{"price / 2 > 12", []string{"Red Shirt", "Blue Jeans"}},
		{"price / 0 > 1", nil},
		{"price / 0 != 1", []string{"Red Shirt", "Blue Jeans", "Green Hat"}},
		{"price % 0 == 0", nil},
		{"not active", []string{"Blue Jeans", "Mystery Box"}},
		{"tags includes 'sale'", []string{"Red Shirt"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res, err := c.Search(ctx, "shop", tt.expr, stockmaster.SearchOptions{Limit: 100})
			require.NoError(t, err)
			inSQL := names(res)

			matched, err := coll.Filter(tt.expr)
			require.NoError(t, err)
			inMemory := names(stockmaster.SearchResult{Products: matched})

			if tt.want == nil {
				assert.Empty(t, inSQL)
				assert.Empty(t, inMemory)
				return
			}
			assert.Equal(t, tt.want, inSQL)
			assert.Equal(t, tt.want, inMemory)
		})
	}
}
