// Package ast defines the syntax trees for the three sections of a Glyph
// component file: the template tree, the style tree, and the script tree.
// A ComponentSource is parsed once per file and is immutable afterwards.
package ast

import "github.com/glyph-dev/glyph/internal/token"

// ComponentSource is the parsed form of one component file.
type ComponentSource struct {
	File     string
	Name     string // component name, derived from the file name
	Template *Template
	Style    *Style
	Script   *Script
}

// ---------------------------------------------------------------------------
// Template tree
// ---------------------------------------------------------------------------

// Template is the root of the markup section.
type Template struct {
	Pos      token.Pos
	Children []TemplateNode
}

// TemplateNode is implemented by every node in the template tree.
type TemplateNode interface {
	templateNode()
	Position() token.Pos
}

// Element is a markup element. Unrecognized attributes pass through verbatim
// as static markup; show-if and on-* attributes are lifted into
// ConditionalShow wrappers and EventBinding entries during parsing.
type Element struct {
	Pos      token.Pos
	Tag      string
	Attrs    []Attr
	Events   []*EventBinding
	Children []TemplateNode
}

// Attr is a static attribute on an element.
type Attr struct {
	Pos   token.Pos
	Name  string
	Value string
}

// EventBinding binds a markup event to a message-constructing expression.
// The constructor reference is resolved against the Msg enum at compile time.
type EventBinding struct {
	Pos   token.Pos
	Event string // "click" from on-click
	Ctor  Expr
}

// Text is a literal text run.
type Text struct {
	Pos   token.Pos
	Value string
}

// Interp is a { expr } text interpolation.
type Interp struct {
	Pos  token.Pos
	Expr Expr
}

// ConditionalShow gates a subtree on a boolean expression. When the condition
// is false the subtree is excluded from output entirely. Multi-branch
// template conditionals are a documented extension point; show-if is boolean
// inclusion only.
type ConditionalShow struct {
	Pos      token.Pos
	Cond     Expr
	Children []TemplateNode
}

func (*Element) templateNode()         {}
func (*Text) templateNode()            {}
func (*Interp) templateNode()          {}
func (*ConditionalShow) templateNode() {}
func (*EventBinding) templateNode()    {}

func (e *Element) Position() token.Pos         { return e.Pos }
func (t *Text) Position() token.Pos            { return t.Pos }
func (i *Interp) Position() token.Pos          { return i.Pos }
func (c *ConditionalShow) Position() token.Pos { return c.Pos }
func (b *EventBinding) Position() token.Pos    { return b.Pos }

// ---------------------------------------------------------------------------
// Style tree
// ---------------------------------------------------------------------------

// Style is the root of the style section: an ordered list of rules.
type Style struct {
	Pos   token.Pos
	Rules []*Rule
}

// Rule is one selector group with its declarations.
type Rule struct {
	Pos          token.Pos
	Selectors    []Selector
	Declarations []*Declaration
}

// Selector is one complex selector, stored as its compound parts in
// document order with the combinators between them.
type Selector struct {
	Pos       token.Pos
	Compounds []string // "p", ".box", "#app"
	Combinators []string // " " or ">" between adjacent compounds
}

// Declaration is a single property: value pair.
type Declaration struct {
	Pos      token.Pos
	Property string
	Value    string // raw value text, verbatim from the source
}

// ---------------------------------------------------------------------------
// Script tree
// ---------------------------------------------------------------------------

// Script is the root of the script section: an ordered declaration sequence.
type Script struct {
	Pos   token.Pos
	Decls []Decl
}

// Decl is implemented by top-level script declarations.
type Decl interface {
	declNode()
	Position() token.Pos
	DeclName() string
}

// TypeDecl declares a record type: type Name = { field: Type, ... }.
type TypeDecl struct {
	Pos    token.Pos
	Name   string
	Fields []*FieldDecl
}

// FieldDecl is one record field.
type FieldDecl struct {
	Pos  token.Pos
	Name string
	Type TypeRef
}

// EnumDecl declares a sum type: enum Name = { A | B(T) }.
type EnumDecl struct {
	Pos      token.Pos
	Name     string
	Variants []*VariantDecl
}

// VariantDecl is one enum variant with an optional payload type.
type VariantDecl struct {
	Pos     token.Pos
	Name    string
	Payload TypeRef // nil when the variant carries no payload
}

// FunctionDecl declares a pure function: fn name(params): Type { expr }.
// The body is a single expression; the grammar has no statements and no
// side-effecting primitives.
type FunctionDecl struct {
	Pos    token.Pos
	Name   string
	Params []*Param
	Result TypeRef
	Body   Expr
}

// Param is a function parameter.
type Param struct {
	Pos  token.Pos
	Name string
	Type TypeRef
}

func (*TypeDecl) declNode()     {}
func (*EnumDecl) declNode()     {}
func (*FunctionDecl) declNode() {}

func (d *TypeDecl) Position() token.Pos     { return d.Pos }
func (d *EnumDecl) Position() token.Pos     { return d.Pos }
func (d *FunctionDecl) Position() token.Pos { return d.Pos }

func (d *TypeDecl) DeclName() string     { return d.Name }
func (d *EnumDecl) DeclName() string     { return d.Name }
func (d *FunctionDecl) DeclName() string { return d.Name }

// TypeRef is a syntactic type reference, resolved by the type checker.
type TypeRef interface {
	typeRefNode()
	Position() token.Pos
}

// NamedRef references a primitive or declared type by name.
type NamedRef struct {
	Pos  token.Pos
	Name string
}

// MaybeRef references the optional type: Maybe<T>.
type MaybeRef struct {
	Pos   token.Pos
	Inner TypeRef
}

func (*NamedRef) typeRefNode() {}
func (*MaybeRef) typeRefNode() {}

func (r *NamedRef) Position() token.Pos { return r.Pos }
func (r *MaybeRef) Position() token.Pos { return r.Pos }

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
	Position() token.Pos
}

// IntLit is an integer literal.
type IntLit struct {
	Pos   token.Pos
	Value int64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Pos   token.Pos
	Value bool
}

// StringLit is a string literal.
type StringLit struct {
	Pos   token.Pos
	Value string
}

// Ref references a parameter, a match binding, or a nullary constructor.
type Ref struct {
	Pos  token.Pos
	Name string
}

// FieldAccess reads a record field: target.field.
type FieldAccess struct {
	Pos    token.Pos
	Target Expr
	Field  string
}

// Unary is !expr or -expr.
type Unary struct {
	Pos     token.Pos
	Op      token.Kind
	Operand Expr
}

// Binary is a binary operator application.
type Binary struct {
	Pos         token.Pos
	Op          token.Kind
	Left, Right Expr
}

// Call applies a named function or constructor to positional arguments:
// helper(x), Some(x), SetTitle(t).
type Call struct {
	Pos    token.Pos
	Callee string
	Args   []Expr
}

// RecordLit constructs a record value, optionally copying unlisted fields
// from a base value: Model(count: 5, ..base). Construction never mutates the
// base.
type RecordLit struct {
	Pos      token.Pos
	TypeName string
	Fields   []*FieldInit
	Base     Expr // nil when every field is listed explicitly
}

// FieldInit is one field: value entry of a record literal.
type FieldInit struct {
	Pos   token.Pos
	Name  string
	Value Expr
}

// Match is a pattern match over a scrutinee expression. Arm patterns must be
// collectively exhaustive over the scrutinee's type; the checker enforces it.
type Match struct {
	Pos       token.Pos
	Scrutinee Expr
	Arms      []*MatchArm
}

// MatchArm is one pattern => expr arm.
type MatchArm struct {
	Pos     token.Pos
	Pattern Pattern
	Body    Expr
}

func (*IntLit) exprNode()      {}
func (*BoolLit) exprNode()     {}
func (*StringLit) exprNode()   {}
func (*Ref) exprNode()         {}
func (*FieldAccess) exprNode() {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Call) exprNode()        {}
func (*RecordLit) exprNode()   {}
func (*Match) exprNode()       {}

func (e *IntLit) Position() token.Pos      { return e.Pos }
func (e *BoolLit) Position() token.Pos     { return e.Pos }
func (e *StringLit) Position() token.Pos   { return e.Pos }
func (e *Ref) Position() token.Pos         { return e.Pos }
func (e *FieldAccess) Position() token.Pos { return e.Pos }
func (e *Unary) Position() token.Pos       { return e.Pos }
func (e *Binary) Position() token.Pos      { return e.Pos }
func (e *Call) Position() token.Pos        { return e.Pos }
func (e *RecordLit) Position() token.Pos   { return e.Pos }
func (e *Match) Position() token.Pos       { return e.Pos }

// ---------------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------------

// Pattern is implemented by match arm patterns.
type Pattern interface {
	patternNode()
	Position() token.Pos
}

// WildcardPattern matches anything without binding: _.
type WildcardPattern struct {
	Pos token.Pos
}

// BindPattern matches anything and binds it to a name.
type BindPattern struct {
	Pos  token.Pos
	Name string
}

// LiteralPattern matches a literal value: 0, true, "x".
type LiteralPattern struct {
	Pos     token.Pos
	Literal Expr
}

// CtorPattern matches an enum variant or an option constructor, with
// subpatterns for the payload: Increment, SetTitle(t), Some(x), None.
type CtorPattern struct {
	Pos  token.Pos
	Name string
	Args []Pattern
}

func (*WildcardPattern) patternNode() {}
func (*BindPattern) patternNode()     {}
func (*LiteralPattern) patternNode()  {}
func (*CtorPattern) patternNode()     {}

func (p *WildcardPattern) Position() token.Pos { return p.Pos }
func (p *BindPattern) Position() token.Pos     { return p.Pos }
func (p *LiteralPattern) Position() token.Pos  { return p.Pos }
func (p *CtorPattern) Position() token.Pos     { return p.Pos }
