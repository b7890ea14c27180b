package types

import (
	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/token"
)

// CtorInfo resolves a constructor name to its enum and variant slot. Event
// bindings and patterns embed these so no runtime string lookup ever happens.
type CtorInfo struct {
	Enum    *Type
	Variant string
	Index   int
	Payload *Type // nil for payload-free constructors
}

// FuncSig is a resolved function signature.
type FuncSig struct {
	Name   string
	Params []*Type
	Names  []string
	Result *Type
	Decl   *ast.FunctionDecl // nil for builtins
}

// Symbols is the symbol table built from the script declarations.
type Symbols struct {
	Types map[string]*Type
	Funcs map[string]*FuncSig
	Ctors map[string]*CtorInfo
}

// Builtin function signatures. attr reads a host attribute; absence is a
// checked Maybe, never a missing-value fault.
var builtinFuncs = map[string]*FuncSig{
	"attr": {
		Name:   "attr",
		Params: []*Type{Attrs, String},
		Names:  []string{"attrs", "name"},
		Result: Option(String),
	},
	"str": {
		Name:   "str",
		Params: []*Type{Int},
		Names:  []string{"value"},
		Result: String,
	},
}

// IsBuiltinFunc reports whether name is a builtin function.
func IsBuiltinFunc(name string) bool {
	_, ok := builtinFuncs[name]
	return ok
}

// primitiveNames maps source type names to primitive types.
var primitiveNames = map[string]*Type{
	"int":    Int,
	"bool":   Bool,
	"string": String,
	"Attrs":  Attrs,
}

// buildSymbols runs the declaration pass: it registers every record, enum,
// constructor, and function signature, reporting duplicates and unknown type
// references. Bodies are not checked here.
func (c *checker) buildSymbols(script *ast.Script) *Symbols {
	syms := &Symbols{
		Types: map[string]*Type{},
		Funcs: map[string]*FuncSig{},
		Ctors: map[string]*CtorInfo{},
	}
	for name, sig := range builtinFuncs {
		syms.Funcs[name] = sig
	}

	// First pass: register type and enum shells so fields may reference any
	// declared type regardless of order.
	for _, decl := range script.Decls {
		switch d := decl.(type) {
		case *ast.TypeDecl:
			if c.declareName(syms, d.Name, d.Position()) {
				syms.Types[d.Name] = &Type{Kind: KindRecord, Name: d.Name}
			}
		case *ast.EnumDecl:
			if c.declareName(syms, d.Name, d.Position()) {
				syms.Types[d.Name] = &Type{Kind: KindEnum, Name: d.Name}
			}
		}
	}

	// Second pass: resolve field, variant, and signature types.
	for _, decl := range script.Decls {
		switch d := decl.(type) {
		case *ast.TypeDecl:
			t := syms.Types[d.Name]
			if t == nil || t.Kind != KindRecord {
				continue // duplicate already reported
			}
			seen := map[string]bool{}
			for _, f := range d.Fields {
				if seen[f.Name] {
					c.errorAt(f.Pos, "G201").
						WithDetailf("field %q declared twice on %s", f.Name, d.Name)
					continue
				}
				seen[f.Name] = true
				t.Fields = append(t.Fields, Field{Name: f.Name, Type: c.resolveRef(syms, f.Type)})
			}
		case *ast.EnumDecl:
			t := syms.Types[d.Name]
			if t == nil || t.Kind != KindEnum {
				continue
			}
			for i, v := range d.Variants {
				var payload *Type
				if v.Payload != nil {
					payload = c.resolveRef(syms, v.Payload)
				}
				if prev, ok := syms.Ctors[v.Name]; ok {
					c.errorAt(v.Pos, "G201").
						WithDetailf("constructor %q already declared on enum %s", v.Name, prev.Enum.Name)
					continue
				}
				if t.VariantByName(v.Name) != nil {
					c.errorAt(v.Pos, "G201").
						WithDetailf("variant %q declared twice on %s", v.Name, d.Name)
					continue
				}
				t.Variants = append(t.Variants, Variant{Name: v.Name, Payload: payload})
				syms.Ctors[v.Name] = &CtorInfo{Enum: t, Variant: v.Name, Index: i, Payload: payload}
			}
		case *ast.FunctionDecl:
			if !c.declareName(syms, d.Name, d.Position()) {
				continue
			}
			sig := &FuncSig{Name: d.Name, Result: c.resolveRef(syms, d.Result), Decl: d}
			for _, p := range d.Params {
				sig.Params = append(sig.Params, c.resolveRef(syms, p.Type))
				sig.Names = append(sig.Names, p.Name)
			}
			syms.Funcs[d.Name] = sig
		}
	}

	return syms
}

// declareName reports a duplicate declaration and returns false when the name
// is already taken by a type or function.
func (c *checker) declareName(syms *Symbols, name string, pos token.Pos) bool {
	_, isType := syms.Types[name]
	existing, isFunc := syms.Funcs[name]
	if isType || (isFunc && existing.Decl != nil) {
		c.errorAt(pos, "G201").WithDetailf("%q is already declared in this file", name)
		return false
	}
	if isFunc {
		c.errorAt(pos, "G201").WithDetailf("%q shadows a builtin function", name)
		return false
	}
	return true
}

// resolveRef resolves a syntactic type reference, reporting unknown names.
func (c *checker) resolveRef(syms *Symbols, ref ast.TypeRef) *Type {
	switch r := ref.(type) {
	case *ast.NamedRef:
		if t, ok := primitiveNames[r.Name]; ok {
			return t
		}
		if t, ok := syms.Types[r.Name]; ok {
			return t
		}
		c.errorAt(r.Pos, "G200").WithDetailf("type %q is not declared", r.Name)
		return nil
	case *ast.MaybeRef:
		return Option(c.resolveRef(syms, r.Inner))
	default:
		c.errorAt(ref.Position(), "G200")
		return nil
	}
}

// errorAt records a diagnostic at a source position and returns it so the
// caller can attach detail and suggestions.
func (c *checker) errorAt(pos token.Pos, code string) *errors.GlyphError {
	e := errors.New(code).WithLocation(c.file, pos.Line, pos.Column)
	c.diags.Add(e)
	return e
}
