package types

import (
	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/token"
)

// Entry point names the runtime contract depends on.
const (
	InitFunc   = "init"
	UpdateFunc = "update"
	ModelType  = "Model"
	MsgType    = "Msg"
)

// Checked is the fully annotated result of type checking one component.
type Checked struct {
	Comp    *ast.ComponentSource
	Symbols *Symbols
	Model   *Type // the Model record, nil for script-less components
	Msg     *Type // the Msg enum, nil when no messages are declared

	// ExprTypes annotates every checked expression with its type.
	ExprTypes map[ast.Expr]*Type

	// Bindings annotates every pattern binding with its bound type.
	Bindings map[*ast.BindPattern]*Type
}

// TypeOf returns the annotated type of a checked expression.
func (ch *Checked) TypeOf(e ast.Expr) *Type {
	return ch.ExprTypes[e]
}

type checker struct {
	file  string
	diags errors.List
	out   *Checked
}

// env is a lexical scope mapping names to types. Scopes are small; copying
// on extension keeps match-arm bindings properly scoped.
type env map[string]*Type

func (e env) extend() env {
	child := make(env, len(e)+2)
	for k, v := range e {
		child[k] = v
	}
	return child
}

// Check type-checks a parsed component. It returns the annotated result and
// every diagnostic found; the result is nil when any error was reported.
func Check(comp *ast.ComponentSource) (*Checked, errors.List) {
	c := &checker{file: comp.File}
	c.out = &Checked{
		Comp:      comp,
		ExprTypes: map[ast.Expr]*Type{},
		Bindings:  map[*ast.BindPattern]*Type{},
	}

	script := comp.Script
	if script == nil {
		script = &ast.Script{}
	}
	syms := c.buildSymbols(script)
	c.out.Symbols = syms

	if t, ok := syms.Types[ModelType]; ok && t.Kind == KindRecord {
		c.out.Model = t
	}
	if t, ok := syms.Types[MsgType]; ok && t.Kind == KindEnum {
		c.out.Msg = t
	}

	c.checkEntryPoints(script, syms)

	for _, decl := range script.Decls {
		fn, ok := decl.(*ast.FunctionDecl)
		if !ok {
			continue
		}
		sig := syms.Funcs[fn.Name]
		if sig == nil || sig.Decl != fn {
			continue // duplicate, already reported
		}
		scope := env{}
		for i, name := range sig.Names {
			scope[name] = sig.Params[i]
		}
		c.checkExpr(fn.Body, scope, sig.Result)
	}

	if comp.Template != nil {
		c.checkTemplate(comp.Template)
	}

	c.diags.Sort()
	if c.diags.HasErrors() {
		return nil, c.diags
	}
	return c.out, nil
}

// checkEntryPoints enforces the init/update contract: the runtime depends on
// these exact shapes, so mismatches are fatal.
func (c *checker) checkEntryPoints(script *ast.Script, syms *Symbols) {
	if len(script.Decls) == 0 {
		return // static component, nothing to enforce
	}

	if c.out.Model == nil {
		c.errorAt(script.Pos, "G209").
			WithDetailf("no record type named %s is declared", ModelType)
		return
	}

	initSig, hasInit := syms.Funcs[InitFunc]
	if !hasInit || initSig.Decl == nil {
		c.errorAt(script.Pos, "G209").WithDetailf("missing fn %s", InitFunc)
	} else {
		ok := len(initSig.Params) == 0 ||
			(len(initSig.Params) == 1 && Equal(initSig.Params[0], Attrs))
		if !ok || !isNamedRecord(initSig.Result, ModelType) {
			c.errorAt(initSig.Decl.Pos, "G204").
				WithDetailf("init must have shape fn init(attrs: Attrs): %s", ModelType).
				WithExample("fn init(attrs: Attrs): Model { Model(count: 0) }")
		}
	}

	updateSig, hasUpdate := syms.Funcs[UpdateFunc]
	switch {
	case !hasUpdate || updateSig.Decl == nil:
		if c.out.Msg != nil {
			c.errorAt(script.Pos, "G209").WithDetailf("missing fn %s", UpdateFunc)
		}
	case c.out.Msg == nil:
		c.errorAt(updateSig.Decl.Pos, "G204").
			WithDetailf("update requires an enum named %s", MsgType)
	default:
		ok := len(updateSig.Params) == 2 &&
			Equal(updateSig.Params[0], c.out.Msg) &&
			isNamedRecord(updateSig.Params[1], ModelType) &&
			isNamedRecord(updateSig.Result, ModelType)
		if !ok {
			c.errorAt(updateSig.Decl.Pos, "G204").
				WithDetailf("update must have shape fn update(msg: %s, model: %s): %s",
					MsgType, ModelType, ModelType)
		}
	}
}

func isNamedRecord(t *Type, name string) bool {
	return t != nil && t.Kind == KindRecord && t.Name == name
}

// checkExpr infers the expression's type bottom-up. want carries the
// contextually expected type when one exists; it resolves otherwise-ambiguous
// constructors like None and is checked against the inferred type.
func (c *checker) checkExpr(e ast.Expr, scope env, want *Type) *Type {
	t := c.inferExpr(e, scope, want)
	if t != nil && want != nil && !Equal(t, want) {
		c.errorAt(e.Position(), "G202").
			WithDetailf("this expression has type %s, but %s is required", t, want)
	}
	c.out.ExprTypes[e] = t
	return t
}

func (c *checker) inferExpr(e ast.Expr, scope env, want *Type) *Type {
	switch x := e.(type) {
	case *ast.IntLit:
		return Int
	case *ast.BoolLit:
		return Bool
	case *ast.StringLit:
		return String
	case *ast.Ref:
		return c.inferRef(x, scope, want)
	case *ast.FieldAccess:
		return c.inferFieldAccess(x, scope)
	case *ast.Unary:
		return c.inferUnary(x, scope)
	case *ast.Binary:
		return c.inferBinary(x, scope)
	case *ast.Call:
		return c.inferCall(x, scope, want)
	case *ast.RecordLit:
		return c.inferRecordLit(x, scope)
	case *ast.Match:
		return c.inferMatch(x, scope, want)
	default:
		c.errorAt(e.Position(), "G202").WithDetailf("unsupported expression")
		return nil
	}
}

func (c *checker) inferRef(x *ast.Ref, scope env, want *Type) *Type {
	if t, ok := scope[x.Name]; ok {
		return t
	}
	if x.Name == "None" {
		if want != nil && want.Kind == KindOption {
			return want
		}
		return Option(nil)
	}
	if info, ok := c.out.Symbols.Ctors[x.Name]; ok {
		if info.Payload != nil {
			c.errorAt(x.Pos, "G210").
				WithDetailf("constructor %s takes a payload: write %s(...)", x.Name, x.Name)
			return info.Enum
		}
		return info.Enum
	}
	c.errorAt(x.Pos, "G205").WithDetailf("nothing named %q is in scope", x.Name)
	return nil
}

func (c *checker) inferFieldAccess(x *ast.FieldAccess, scope env) *Type {
	target := c.checkExpr(x.Target, scope, nil)
	if target == nil {
		return nil
	}
	if target.Kind != KindRecord {
		c.errorAt(x.Pos, "G202").
			WithDetailf("cannot read field %q of non-record type %s", x.Field, target)
		return nil
	}
	if ft := target.FieldType(x.Field); ft != nil {
		return ft
	}
	c.errorAt(x.Pos, "G206").
		WithDetailf("%s has no field %q", target.Name, x.Field)
	return nil
}

func (c *checker) inferUnary(x *ast.Unary, scope env) *Type {
	switch x.Op {
	case token.Bang:
		c.checkExpr(x.Operand, scope, Bool)
		return Bool
	default: // token.Minus
		c.checkExpr(x.Operand, scope, Int)
		return Int
	}
}

func (c *checker) inferBinary(x *ast.Binary, scope env) *Type {
	switch x.Op {
	case token.And, token.Or:
		c.checkExpr(x.Left, scope, Bool)
		c.checkExpr(x.Right, scope, Bool)
		return Bool
	case token.Lt, token.Gt, token.LtEq, token.GtEq:
		c.checkExpr(x.Left, scope, Int)
		c.checkExpr(x.Right, scope, Int)
		return Bool
	case token.Eq, token.NotEq:
		left := c.checkExpr(x.Left, scope, nil)
		c.checkExpr(x.Right, scope, left)
		return Bool
	case token.Plus:
		// + is addition on ints and concatenation on strings.
		left := c.checkExpr(x.Left, scope, nil)
		if left != nil && left.Kind == KindString {
			c.checkExpr(x.Right, scope, String)
			return String
		}
		if left != nil && left.Kind != KindInt {
			c.errorAt(x.Left.Position(), "G202").
				WithDetailf("operator + needs int or string operands, not %s", left)
		}
		c.checkExpr(x.Right, scope, Int)
		return left
	default: // - * /
		c.checkExpr(x.Left, scope, Int)
		c.checkExpr(x.Right, scope, Int)
		return Int
	}
}

func (c *checker) inferCall(x *ast.Call, scope env, want *Type) *Type {
	// Constructor application: Some(x), SetTitle(t).
	if x.Callee == "Some" {
		if len(x.Args) != 1 {
			c.errorAt(x.Pos, "G210").WithDetailf("Some takes exactly one argument")
			return Option(nil)
		}
		var wantInner *Type
		if want != nil && want.Kind == KindOption {
			wantInner = want.Inner
		}
		inner := c.checkExpr(x.Args[0], scope, wantInner)
		return Option(inner)
	}
	if info, ok := c.out.Symbols.Ctors[x.Callee]; ok {
		if info.Payload == nil {
			c.errorAt(x.Pos, "G210").
				WithDetailf("constructor %s takes no payload", x.Callee)
			return info.Enum
		}
		if len(x.Args) != 1 {
			c.errorAt(x.Pos, "G210").
				WithDetailf("constructor %s takes exactly one argument", x.Callee)
			return info.Enum
		}
		c.checkExpr(x.Args[0], scope, info.Payload)
		return info.Enum
	}

	sig, ok := c.out.Symbols.Funcs[x.Callee]
	if !ok {
		c.errorAt(x.Pos, "G205").
			WithDetailf("nothing named %q is in scope", x.Callee)
		return nil
	}
	if len(x.Args) != len(sig.Params) {
		c.errorAt(x.Pos, "G210").
			WithDetailf("%s takes %d argument(s), got %d", x.Callee, len(sig.Params), len(x.Args))
		return sig.Result
	}
	for i, arg := range x.Args {
		c.checkExpr(arg, scope, sig.Params[i])
	}
	return sig.Result
}

// inferRecordLit checks record construction and the record-update form.
// Updates copy unlisted fields from the base; plain construction must list
// every field, so no field is ever absent.
func (c *checker) inferRecordLit(x *ast.RecordLit, scope env) *Type {
	t, ok := c.out.Symbols.Types[x.TypeName]
	if !ok || t.Kind != KindRecord {
		c.errorAt(x.Pos, "G200").
			WithDetailf("%q is not a declared record type", x.TypeName)
		return nil
	}

	seen := map[string]bool{}
	for _, init := range x.Fields {
		ft := t.FieldType(init.Name)
		if ft == nil {
			c.errorAt(init.Pos, "G206").
				WithDetailf("%s has no field %q", t.Name, init.Name)
			continue
		}
		if seen[init.Name] {
			c.errorAt(init.Pos, "G202").
				WithDetailf("field %q is set twice", init.Name)
		}
		seen[init.Name] = true
		c.checkExpr(init.Value, scope, ft)
	}

	if x.Base != nil {
		c.checkExpr(x.Base, scope, t)
		return t
	}
	for _, f := range t.Fields {
		if !seen[f.Name] {
			c.errorAt(x.Pos, "G202").
				WithDetailf("field %q of %s is not set; list it or copy it with ..base", f.Name, t.Name)
		}
	}
	return t
}

func (c *checker) inferMatch(x *ast.Match, scope env, want *Type) *Type {
	scrutinee := c.checkExpr(x.Scrutinee, scope, nil)

	var result *Type = want
	for _, arm := range x.Arms {
		armScope := scope.extend()
		c.checkPattern(arm.Pattern, scrutinee, armScope)
		bodyType := c.checkExpr(arm.Body, armScope, result)
		if result == nil {
			result = bodyType
		}
	}

	if scrutinee != nil {
		if missing := missingShapes(scrutinee, patterns(x.Arms)); len(missing) > 0 {
			e := c.errorAt(x.Pos, "G203").
				WithDetailf("these shapes are not matched: %s", joinShapes(missing))
			if scrutinee.Kind == KindOption {
				e.WithSuggestion("a Maybe value must handle both Some and None")
			}
		}
	}
	return result
}

// checkPattern validates a pattern against the scrutinee type and binds its
// names into the arm scope.
func (c *checker) checkPattern(p ast.Pattern, scrutinee *Type, scope env) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		// Matches everything.
	case *ast.BindPattern:
		scope[pat.Name] = scrutinee
		c.out.Bindings[pat] = scrutinee
	case *ast.LiteralPattern:
		c.checkExpr(pat.Literal, scope, scrutinee)
	case *ast.CtorPattern:
		c.checkCtorPattern(pat, scrutinee, scope)
	}
}

func (c *checker) checkCtorPattern(pat *ast.CtorPattern, scrutinee *Type, scope env) {
	if scrutinee == nil {
		return
	}
	switch {
	case scrutinee.Kind == KindOption && pat.Name == "None":
		if len(pat.Args) != 0 {
			c.errorAt(pat.Pos, "G210").WithDetailf("None carries no payload")
		}
	case scrutinee.Kind == KindOption && pat.Name == "Some":
		if len(pat.Args) != 1 {
			c.errorAt(pat.Pos, "G210").WithDetailf("Some carries exactly one value")
			return
		}
		c.checkPattern(pat.Args[0], scrutinee.Inner, scope)
	case scrutinee.Kind == KindEnum:
		variant := scrutinee.VariantByName(pat.Name)
		if variant == nil {
			c.errorAt(pat.Pos, "G205").
				WithDetailf("enum %s has no variant %q", scrutinee.Name, pat.Name)
			return
		}
		switch {
		case variant.Payload == nil && len(pat.Args) != 0:
			c.errorAt(pat.Pos, "G210").
				WithDetailf("variant %s carries no payload", pat.Name)
		case variant.Payload != nil && len(pat.Args) != 1:
			c.errorAt(pat.Pos, "G210").
				WithDetailf("variant %s carries exactly one value", pat.Name)
		case variant.Payload != nil:
			c.checkPattern(pat.Args[0], variant.Payload, scope)
		}
	default:
		c.errorAt(pat.Pos, "G202").
			WithDetailf("constructor pattern %s cannot match a value of type %s", pat.Name, scrutinee)
	}
}

func patterns(arms []*ast.MatchArm) []ast.Pattern {
	out := make([]ast.Pattern, len(arms))
	for i, arm := range arms {
		out[i] = arm.Pattern
	}
	return out
}
