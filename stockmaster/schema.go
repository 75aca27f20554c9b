package stockmaster

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/stockmaster/stockmaster/stockmaster/query"
)

// FieldType specifies the declared type of a field
type FieldType string

const (
	FieldInteger  FieldType = "integer"
	FieldFloat    FieldType = "float"
	FieldString   FieldType = "string"
	FieldBoolean  FieldType = "boolean"
	FieldArray    FieldType = "array"
	FieldDatetime FieldType = "datetime"
	// FieldImage holds the storage key of an uploaded image.
	FieldImage FieldType = "image"
)

var fieldTypes = []FieldType{
	FieldInteger, FieldFloat, FieldString, FieldBoolean, FieldArray, FieldDatetime, FieldImage,
}

// ParseFieldType matches s case-insensitively against the known types.
func ParseFieldType(s string) (FieldType, bool) {
	folded := query.Fold(s)
	for _, t := range fieldTypes {
		if string(t) == folded {
			return t, true
		}
	}
	return "", false
}

// Kind maps the declared type to the kind the query compiler works with.
func (t FieldType) Kind() query.Kind {
	if parsed, ok := ParseFieldType(string(t)); ok {
		t = parsed
	}
	switch t {
	case FieldInteger, FieldFloat:
		return query.KindNum
	case FieldBoolean:
		return query.KindBool
	case FieldArray:
		return query.KindArr
	case FieldDatetime:
		return query.KindDate
	default:
		return query.KindStr
	}
}

// FieldSpec defines a field's configuration
type FieldSpec struct {
	Type   FieldType `json:"type" yaml:"type"`
	Hidden bool      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Schema defines the fields of an inventory. Names keep the case they
// were declared with but are unique case-insensitively.
type Schema struct {
	Fields map[string]FieldSpec `json:"fields" yaml:"fields"`
}

var validFieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks if the schema is valid
func (s Schema) Validate() error {
	seen := make(map[string]string, len(s.Fields))
	for _, name := range s.FieldNames() {
		if err := validateFieldName(name); err != nil {
			return err
		}
		folded := query.Fold(name)
		if other, ok := seen[folded]; ok {
			return SchemaError(fmt.Sprintf("field '%s' duplicates '%s'", name, other))
		}
		seen[folded] = name

		if _, ok := ParseFieldType(string(s.Fields[name].Type)); !ok {
			return SchemaError(fmt.Sprintf("unknown field type '%s' for field '%s'", s.Fields[name].Type, name))
		}
	}
	return nil
}

func validateFieldName(name string) error {
	if !validFieldNameRe.MatchString(name) {
		return SchemaError(fmt.Sprintf("invalid field name: %s (must match ^[A-Za-z_][A-Za-z0-9_]*$)", name))
	}
	if query.IsReserved(name) {
		return SchemaError(fmt.Sprintf("field name '%s' is reserved", name))
	}
	if _, ok := ParseFieldType(name); ok {
		return SchemaError(fmt.Sprintf("field name '%s' is a type name", name))
	}
	return nil
}

// AddField returns a copy of s with a new field. The name must not clash
// with an existing field in any letter case.
func (s Schema) AddField(name string, spec FieldSpec) (Schema, error) {
	if err := validateFieldName(name); err != nil {
		return Schema{}, err
	}
	if existing, _, ok := s.Lookup(name); ok {
		return Schema{}, SchemaError(fmt.Sprintf("field '%s' already exists as '%s'", name, existing))
	}
	t, ok := ParseFieldType(string(spec.Type))
	if !ok {
		return Schema{}, SchemaError(fmt.Sprintf("unknown field type '%s' for field '%s'", spec.Type, name))
	}
	spec.Type = t

	out := Schema{Fields: make(map[string]FieldSpec, len(s.Fields)+1)}
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	out.Fields[name] = spec
	return out, nil
}

// Lookup finds a field case-insensitively and returns its declared name.
func (s Schema) Lookup(name string) (string, FieldSpec, bool) {
	if spec, ok := s.Fields[name]; ok {
		return name, spec, true
	}
	folded := query.Fold(name)
	for declared, spec := range s.Fields {
		if query.Fold(declared) == folded {
			return declared, spec, true
		}
	}
	return "", FieldSpec{}, false
}

// FieldNames returns the declared field names in sorted order.
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// QuerySchema exposes the schema to the query compiler.
func (s Schema) QuerySchema() query.Schema {
	qs := make(querySchema, len(s.Fields))
	for name, spec := range s.Fields {
		qs[query.Fold(name)] = query.Field{Name: name, Kind: spec.Type.Kind()}
	}
	return qs
}

// querySchema is keyed by folded field name.
type querySchema map[string]query.Field

func (qs querySchema) Lookup(name string) (query.Field, bool) {
	f, ok := qs[query.Fold(name)]
	return f, ok
}

// ToJSON serializes the schema to JSON
func (s Schema) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// SchemaFromJSON deserializes a schema from JSON
func SchemaFromJSON(b []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return Schema{}, Wrap(ErrSchema, "invalid schema JSON", err)
	}
	return s.normalized()
}

// SchemaFromYAML deserializes a schema from YAML
func SchemaFromYAML(b []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Schema{}, Wrap(ErrSchema, "invalid schema YAML", err)
	}
	return s.normalized()
}

// normalized validates s and canonicalizes the case of type names.
func (s Schema) normalized() (Schema, error) {
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	out := Schema{Fields: make(map[string]FieldSpec, len(s.Fields))}
	for name, spec := range s.Fields {
		spec.Type, _ = ParseFieldType(string(spec.Type))
		out.Fields[name] = spec
	}
	return out, nil
}
