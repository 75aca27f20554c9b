package sqlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderPlaceholders(t *testing.T) {
	q := New(PlaceholderQuestion)
	assert.Equal(t, "?", q.Arg("a"))
	assert.Equal(t, "?", q.Arg(2))
	assert.Equal(t, []any{"a", 2}, q.Args())

	d := New(PlaceholderDollar)
	for i := 0; i < 9; i++ {
		d.Arg(i)
	}
	assert.Equal(t, "$10", d.Arg("x"))
	assert.Equal(t, 10, d.Len())
}
