// Package value defines the runtime representation of component data: a
// tagged variant covering primitives, attribute maps, records, enum
// instances, and the option type. Values are immutable; record update copies.
package value

import "strconv"

// Kind is the value type discriminator.
type Kind uint8

const (
	KindInt Kind = iota
	KindBool
	KindString
	KindAttrs
	KindRecord
	KindVariant // enum instance
	KindSome
	KindNone
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindAttrs:
		return "Attrs"
	case KindRecord:
		return "Record"
	case KindVariant:
		return "Variant"
	case KindSome:
		return "Some"
	case KindNone:
		return "None"
	default:
		return "Unknown"
	}
}

// Value is one runtime value. Which fields are meaningful depends on Kind.
type Value struct {
	Kind    Kind
	Int     int64
	Bool    bool
	Str     string
	Attrs   map[string]string
	Name    string   // record type or enum name
	Fields  []Value  // record fields, positional
	Variant int      // enum variant index
	Ctor    string   // enum variant name
	Payload *Value   // Some payload or variant payload, nil otherwise
}

// Constructors.

func IntVal(n int64) Value     { return Value{Kind: KindInt, Int: n} }
func BoolVal(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func StringVal(s string) Value { return Value{Kind: KindString, Str: s} }

// AttrsVal wraps a host attribute map. The map is shared, not copied; hosts
// must not mutate it after handing it over.
func AttrsVal(attrs map[string]string) Value {
	return Value{Kind: KindAttrs, Attrs: attrs}
}

// RecordVal builds a record with positional fields.
func RecordVal(name string, fields []Value) Value {
	return Value{Kind: KindRecord, Name: name, Fields: fields}
}

// VariantVal builds an enum instance. payload is nil for nullary variants.
func VariantVal(enum, ctor string, index int, payload *Value) Value {
	return Value{Kind: KindVariant, Name: enum, Ctor: ctor, Variant: index, Payload: payload}
}

// SomeVal wraps a present option payload.
func SomeVal(v Value) Value {
	payload := v
	return Value{Kind: KindSome, Payload: &payload}
}

// NoneVal is the absent option.
func NoneVal() Value { return Value{Kind: KindNone} }

// Field returns the record field at index.
func (v Value) Field(index int) Value {
	return v.Fields[index]
}

// WithFields returns a copy of a record with the overlay applied by index.
// The receiver is never mutated; untouched fields carry over unchanged.
func (v Value) WithFields(overlay map[int]Value) Value {
	fields := make([]Value, len(v.Fields))
	copy(fields, v.Fields)
	for i, f := range overlay {
		if i >= 0 && i < len(fields) {
			fields[i] = f
		}
	}
	return Value{Kind: KindRecord, Name: v.Name, Fields: fields}
}

// Equal reports structural equality.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt:
		return a.Int == b.Int
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return a.Str == b.Str
	case KindAttrs:
		if len(a.Attrs) != len(b.Attrs) {
			return false
		}
		for k, av := range a.Attrs {
			if bv, ok := b.Attrs[k]; !ok || av != bv {
				return false
			}
		}
		return true
	case KindRecord:
		if a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if !Equal(a.Fields[i], b.Fields[i]) {
				return false
			}
		}
		return true
	case KindVariant:
		if a.Name != b.Name || a.Variant != b.Variant {
			return false
		}
		return payloadEqual(a.Payload, b.Payload)
	case KindSome:
		return payloadEqual(a.Payload, b.Payload)
	case KindNone:
		return true
	default:
		return false
	}
}

func payloadEqual(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Equal(*a, *b)
}

// Display renders a value as text. Only primitives render; the checker
// guarantees nothing else reaches an interpolation.
func (v Value) Display() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// String renders a debug form.
func (v Value) String() string {
	switch v.Kind {
	case KindInt, KindBool, KindString:
		return v.Display()
	case KindAttrs:
		return "Attrs(" + strconv.Itoa(len(v.Attrs)) + ")"
	case KindRecord:
		s := v.Name + "("
		for i, f := range v.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.String()
		}
		return s + ")"
	case KindVariant:
		if v.Payload != nil {
			return v.Ctor + "(" + v.Payload.String() + ")"
		}
		return v.Ctor
	case KindSome:
		return "Some(" + v.Payload.String() + ")"
	case KindNone:
		return "None"
	default:
		return "?"
	}
}
