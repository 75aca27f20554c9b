package stockmaster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockmaster/stockmaster/stockmaster/query"
)

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]FieldSpec
		wantErr bool
	}{
		{"empty", nil, false},
		{"ok", map[string]FieldSpec{"price": {Type: FieldFloat}, "Photo": {Type: "IMAGE"}}, false},
		{"bad name", map[string]FieldSpec{"2price": {Type: FieldFloat}}, true},
		{"dash", map[string]FieldSpec{"unit-price": {Type: FieldFloat}}, true},
		{"keyword", map[string]FieldSpec{"Like": {Type: FieldString}}, true},
		{"literal keyword", map[string]FieldSpec{"null": {Type: FieldString}}, true},
		{"type name", map[string]FieldSpec{"datetime": {Type: FieldString}}, true},
		{"case duplicate", map[string]FieldSpec{"qty": {Type: FieldInteger}, "QTY": {Type: FieldInteger}}, true},
		{"unknown type", map[string]FieldSpec{"qty": {Type: "decimal"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Schema{Fields: tt.fields}.Validate()
			if tt.wantErr {
				assert.True(t, IsKind(err, ErrSchema), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFieldTypeKind(t *testing.T) {
	assert.Equal(t, query.KindNum, FieldInteger.Kind())
	assert.Equal(t, query.KindNum, FieldFloat.Kind())
	assert.Equal(t, query.KindStr, FieldString.Kind())
	assert.Equal(t, query.KindStr, FieldImage.Kind())
	assert.Equal(t, query.KindBool, FieldBoolean.Kind())
	assert.Equal(t, query.KindArr, FieldArray.Kind())
	assert.Equal(t, query.KindDate, FieldDatetime.Kind())
	assert.Equal(t, query.KindDate, FieldType("DateTime").Kind())
}

func TestSchemaLookup(t *testing.T) {
	s := Schema{Fields: map[string]FieldSpec{"createdAt": {Type: FieldDatetime}}}

	name, spec, ok := s.Lookup("CREATEDAT")
	require.True(t, ok)
	assert.Equal(t, "createdAt", name)
	assert.Equal(t, FieldDatetime, spec.Type)

	_, _, ok = s.Lookup("created")
	assert.False(t, ok)

	f, ok := s.QuerySchema().Lookup("createdat")
	require.True(t, ok)
	assert.Equal(t, query.Field{Name: "createdAt", Kind: query.KindDate}, f)
}

func TestSchemaAddField(t *testing.T) {
	s := Schema{Fields: map[string]FieldSpec{"price": {Type: FieldFloat}}}

	out, err := s.AddField("tags", FieldSpec{Type: "Array"})
	require.NoError(t, err)
	assert.Equal(t, FieldArray, out.Fields["tags"].Type)
	assert.NotContains(t, s.Fields, "tags")

	_, err = s.AddField("PRICE", FieldSpec{Type: FieldInteger})
	assert.True(t, IsKind(err, ErrSchema))

	_, err = s.AddField("weight", FieldSpec{Type: "kg"})
	assert.True(t, IsKind(err, ErrSchema))

	_, err = s.AddField("or", FieldSpec{Type: FieldBoolean})
	assert.True(t, IsKind(err, ErrSchema))
}

func TestSchemaFromYAML(t *testing.T) {
	src := []byte(`
fields:
  name:
    type: string
  price:
    type: Float
  cost:
    type: float
    hidden: true
`)
	s, err := SchemaFromYAML(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"cost", "name", "price"}, s.FieldNames())
	assert.Equal(t, FieldFloat, s.Fields["price"].Type)
	assert.True(t, s.Fields["cost"].Hidden)

	_, err = SchemaFromYAML([]byte("fields: [1, 2]"))
	assert.True(t, IsKind(err, ErrSchema))
}

func TestSchemaJSONRoundTrip(t *testing.T) {
	s := Schema{Fields: map[string]FieldSpec{
		"qty":  {Type: FieldInteger},
		"cost": {Type: FieldFloat, Hidden: true},
	}}
	b, err := s.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":{"qty":{"type":"integer"},"cost":{"type":"float","hidden":true}}}`, string(b))

	back, err := SchemaFromJSON(b)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	_, err = SchemaFromJSON([]byte(`{"fields":{"qty":{"type":"money"}}}`))
	assert.True(t, IsKind(err, ErrSchema))
}
