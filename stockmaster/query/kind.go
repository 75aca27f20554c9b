package query

// Kind is the semantic type of an operand. It is coarser than a declared
// field type: integer and float fields are both KindNum.
type Kind int

const (
	KindNum Kind = iota
	KindStr
	KindBool
	KindArr
	KindDate
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindNum:
		return "NUM"
	case KindStr:
		return "STR"
	case KindBool:
		return "BOOL"
	case KindArr:
		return "ARR"
	case KindDate:
		return "DT"
	case KindNull:
		return "NULL"
	default:
		return "?"
	}
}

// Field is a schema field resolved for compilation.
type Field struct {
	Name string // canonical (stored) name
	Kind Kind
}

// Schema resolves field names for the compiler. Lookup must be
// case-insensitive and return the canonical name of the field.
type Schema interface {
	Lookup(name string) (Field, bool)
}

// MapSchema is a Schema backed by a map keyed by canonical field name.
// Lookups fold case; it is mostly useful in tests and tools.
type MapSchema map[string]Kind

func (m MapSchema) Lookup(name string) (Field, bool) {
	folded := Fold(name)
	for canonical, kind := range m {
		if Fold(canonical) == folded {
			return Field{Name: canonical, Kind: kind}, true
		}
	}
	return Field{}, false
}
