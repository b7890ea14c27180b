// Package types implements the Glyph type system: structural types with
// records, enums (algebraic sums), the Maybe option type, and statically
// checked exhaustive pattern matching. The checker collects every diagnostic
// for a file instead of stopping at the first.
package types

import (
	"fmt"
	"strings"
)

// Kind is the type discriminator.
type Kind uint8

const (
	KindInt Kind = iota
	KindBool
	KindString
	KindAttrs // the host attribute map passed to init
	KindRecord
	KindEnum
	KindOption
	KindFunc
)

// Type is a tagged variant over the Glyph type universe. Option is the sole
// mechanism for representing an absent value; no nullable primitive exists.
type Type struct {
	Kind     Kind
	Name     string     // record and enum name
	Fields   []Field    // record fields, in declaration order
	Variants []Variant  // enum variants, in declaration order
	Inner    *Type      // option payload; nil means not yet inferred
	Params   []*Type    // function parameters
	Result   *Type      // function result
}

// Field is one record field.
type Field struct {
	Name string
	Type *Type
}

// Variant is one enum constructor with an optional payload type.
type Variant struct {
	Name    string
	Payload *Type // nil for payload-free variants
}

// Primitive singletons.
var (
	Int    = &Type{Kind: KindInt}
	Bool   = &Type{Kind: KindBool}
	String = &Type{Kind: KindString}
	Attrs  = &Type{Kind: KindAttrs}
)

// Option wraps a type in Maybe.
func Option(inner *Type) *Type {
	return &Type{Kind: KindOption, Inner: inner}
}

// Func builds a function type.
func Func(params []*Type, result *Type) *Type {
	return &Type{Kind: KindFunc, Params: params, Result: result}
}

// FieldType returns the type of a named field on a record, or nil.
func (t *Type) FieldType(name string) *Type {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

// VariantByName returns the enum variant with the given name, or nil.
func (t *Type) VariantByName(name string) *Variant {
	for i := range t.Variants {
		if t.Variants[i].Name == name {
			return &t.Variants[i]
		}
	}
	return nil
}

// Equal reports structural equality. Declared records and enums compare by
// name. An option with a nil inner (an unresolved None) equals any option.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		// Unknown types arise after an error was already reported; treat
		// them as equal to avoid cascading diagnostics.
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindRecord, KindEnum:
		return a.Name == b.Name
	case KindOption:
		if a.Inner == nil || b.Inner == nil {
			return true
		}
		return Equal(a.Inner, b.Inner)
	case KindFunc:
		if len(a.Params) != len(b.Params) || !Equal(a.Result, b.Result) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the type for diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindAttrs:
		return "Attrs"
	case KindRecord, KindEnum:
		return t.Name
	case KindOption:
		return fmt.Sprintf("Maybe<%s>", t.Inner.String())
	case KindFunc:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("fn(%s): %s", strings.Join(parts, ", "), t.Result.String())
	default:
		return "?"
	}
}
