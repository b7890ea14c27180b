package ir

import (
	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/token"
	"github.com/glyph-dev/glyph/internal/types"
)

// Build lowers a checked component into its IR. The input has passed the type
// checker, so any failure here is an internal-consistency defect (G301), not
// a user error.
func Build(checked *types.Checked) (*Component, error) {
	b := &builder{
		checked:   checked,
		file:      checked.Comp.File,
		funcIndex: make(map[string]int),
	}
	return b.build()
}

type builder struct {
	checked   *types.Checked
	file      string
	funcIndex map[string]int
}

func (b *builder) internal(pos token.Pos, format string, args ...any) error {
	return errors.New("G301").
		WithLocation(b.file, pos.Line, pos.Column).
		WithDetailf(format, args...)
}

func (b *builder) build() (*Component, error) {
	comp := &Component{
		Name: b.checked.Comp.Name,
		Table: TransitionTable{
			Init:   -1,
			Update: -1,
		},
	}

	if m := b.checked.Model; m != nil {
		comp.Model = ModelSchema{Name: m.Name}
		for i, f := range m.Fields {
			comp.Model.Fields = append(comp.Model.Fields, FieldSchema{
				Name:  f.Name,
				Type:  f.Type.String(),
				Index: i,
			})
		}
	}

	if msg := b.checked.Msg; msg != nil {
		schema := &MsgSchema{Name: msg.Name}
		for i, v := range msg.Variants {
			vs := VariantSchema{Name: v.Name, Index: i}
			if v.Payload != nil {
				vs.Payload = v.Payload.String()
			}
			schema.Variants = append(schema.Variants, vs)
		}
		comp.Msg = schema
	}

	if script := b.checked.Comp.Script; script != nil {
		// Index pass first so functions can call ones declared later.
		for _, decl := range script.Decls {
			fn, ok := decl.(*ast.FunctionDecl)
			if !ok {
				continue
			}
			b.funcIndex[fn.Name] = len(comp.Table.Funcs)
			params := make([]string, len(fn.Params))
			for i, p := range fn.Params {
				params[i] = p.Name
			}
			comp.Table.Funcs = append(comp.Table.Funcs, &Func{
				Name:   fn.Name,
				Params: params,
			})
		}
		for _, decl := range script.Decls {
			fn, ok := decl.(*ast.FunctionDecl)
			if !ok {
				continue
			}
			bound := make(map[string]bool, len(fn.Params))
			for _, p := range fn.Params {
				bound[p.Name] = true
			}
			body, err := b.lowerExpr(fn.Body, bound)
			if err != nil {
				return nil, err
			}
			comp.Table.Funcs[b.funcIndex[fn.Name]].Body = body
		}
		if i, ok := b.funcIndex[types.InitFunc]; ok {
			comp.Table.Init = i
		}
		if i, ok := b.funcIndex[types.UpdateFunc]; ok {
			comp.Table.Update = i
		}
	}

	if tmpl := b.checked.Comp.Template; tmpl != nil {
		scope := b.templateScope()
		roots, err := b.lowerNodes(tmpl.Children, scope)
		if err != nil {
			return nil, err
		}
		comp.Plan.Roots = roots
	}

	return comp, nil
}

// templateScope names everything a template expression may load: the model
// itself plus each of its fields by bare name.
func (b *builder) templateScope() map[string]bool {
	scope := map[string]bool{"model": true}
	if b.checked.Model != nil {
		for _, f := range b.checked.Model.Fields {
			scope[f.Name] = true
		}
	}
	return scope
}

func (b *builder) lowerNodes(nodes []ast.TemplateNode, scope map[string]bool) ([]*PlanNode, error) {
	var out []*PlanNode
	for _, n := range nodes {
		lowered, err := b.lowerNode(n, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered)
	}
	return out, nil
}

func (b *builder) lowerNode(n ast.TemplateNode, scope map[string]bool) (*PlanNode, error) {
	switch n := n.(type) {
	case *ast.Text:
		return &PlanNode{Kind: PlanText, Text: n.Value}, nil

	case *ast.Interp:
		expr, err := b.lowerExpr(n.Expr, scope)
		if err != nil {
			return nil, err
		}
		return &PlanNode{Kind: PlanInterp, Expr: expr}, nil

	case *ast.ConditionalShow:
		cond, err := b.lowerExpr(n.Cond, scope)
		if err != nil {
			return nil, err
		}
		children, err := b.lowerNodes(n.Children, scope)
		if err != nil {
			return nil, err
		}
		return &PlanNode{Kind: PlanCond, Expr: cond, Children: children}, nil

	case *ast.Element:
		node := &PlanNode{Kind: PlanElement, Tag: n.Tag}
		for _, a := range n.Attrs {
			node.Attrs = append(node.Attrs, StaticAttr{Name: a.Name, Value: a.Value})
		}
		for _, ev := range n.Events {
			msg, err := b.lowerExpr(ev.Ctor, scope)
			if err != nil {
				return nil, err
			}
			node.Listeners = append(node.Listeners, Listener{Event: ev.Event, Msg: msg})
		}
		children, err := b.lowerNodes(n.Children, scope)
		if err != nil {
			return nil, err
		}
		node.Children = children
		return node, nil

	default:
		return nil, b.internal(n.Position(), "template node %T has no lowering", n)
	}
}

func (b *builder) lowerExpr(e ast.Expr, bound map[string]bool) (*Expr, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return &Expr{Kind: ExprInt, Int: e.Value}, nil

	case *ast.BoolLit:
		return &Expr{Kind: ExprBool, Bool: e.Value}, nil

	case *ast.StringLit:
		return &Expr{Kind: ExprString, Str: e.Value}, nil

	case *ast.Ref:
		if e.Name == "None" && !bound[e.Name] {
			return &Expr{Kind: ExprNone}, nil
		}
		if bound[e.Name] {
			return &Expr{Kind: ExprLoad, Name: e.Name}, nil
		}
		if info, ok := b.checked.Symbols.Ctors[e.Name]; ok {
			return &Expr{
				Kind:    ExprVariant,
				Name:    info.Enum.Name,
				Variant: info.Variant,
				Index:   info.Index,
			}, nil
		}
		return nil, b.internal(e.Pos, "unresolved name %q", e.Name)

	case *ast.FieldAccess:
		target, err := b.lowerExpr(e.Target, bound)
		if err != nil {
			return nil, err
		}
		rec := b.checked.TypeOf(e.Target)
		if rec == nil || rec.Kind != types.KindRecord {
			return nil, b.internal(e.Pos, "field read on non-record %v", rec)
		}
		for i, f := range rec.Fields {
			if f.Name == e.Field {
				return &Expr{Kind: ExprField, X: target, Index: i, Name: e.Field}, nil
			}
		}
		return nil, b.internal(e.Pos, "%s has no field %q", rec.Name, e.Field)

	case *ast.Unary:
		x, err := b.lowerExpr(e.Operand, bound)
		if err != nil {
			return nil, err
		}
		op := OpNot
		if e.Op == token.Minus {
			op = OpNeg
		}
		return &Expr{Kind: ExprUnary, Op: op, X: x}, nil

	case *ast.Binary:
		return b.lowerBinary(e, bound)

	case *ast.Call:
		return b.lowerCall(e, bound)

	case *ast.RecordLit:
		return b.lowerRecordLit(e, bound)

	case *ast.Match:
		return b.lowerMatch(e, bound)

	default:
		return nil, b.internal(e.Position(), "expression %T has no lowering", e)
	}
}

func (b *builder) lowerBinary(e *ast.Binary, bound map[string]bool) (*Expr, error) {
	x, err := b.lowerExpr(e.Left, bound)
	if err != nil {
		return nil, err
	}
	y, err := b.lowerExpr(e.Right, bound)
	if err != nil {
		return nil, err
	}

	var op Op
	switch e.Op {
	case token.Plus:
		// The checker has already forced both operands to the same type;
		// + over strings lowers to concatenation.
		if t := b.checked.TypeOf(e.Left); t != nil && t.Kind == types.KindString {
			op = OpConcat
		} else {
			op = OpAdd
		}
	case token.Minus:
		op = OpSub
	case token.Star:
		op = OpMul
	case token.Slash:
		op = OpDiv
	case token.Eq:
		op = OpEq
	case token.NotEq:
		op = OpNe
	case token.Lt:
		op = OpLt
	case token.Gt:
		op = OpGt
	case token.LtEq:
		op = OpLe
	case token.GtEq:
		op = OpGe
	case token.And:
		op = OpAnd
	case token.Or:
		op = OpOr
	default:
		return nil, b.internal(e.Pos, "operator %s has no lowering", e.Op)
	}
	return &Expr{Kind: ExprBinary, Op: op, X: x, Y: y}, nil
}

func (b *builder) lowerCall(e *ast.Call, bound map[string]bool) (*Expr, error) {
	args := make([]*Expr, len(e.Args))
	for i, a := range e.Args {
		lowered, err := b.lowerExpr(a, bound)
		if err != nil {
			return nil, err
		}
		args[i] = lowered
	}

	if e.Callee == "Some" {
		if len(args) != 1 {
			return nil, b.internal(e.Pos, "Some lowered with %d arguments", len(args))
		}
		return &Expr{Kind: ExprSome, X: args[0]}, nil
	}

	if info, ok := b.checked.Symbols.Ctors[e.Callee]; ok {
		if len(args) != 1 {
			return nil, b.internal(e.Pos, "constructor %s lowered with %d arguments", e.Callee, len(args))
		}
		return &Expr{
			Kind:    ExprVariant,
			Name:    info.Enum.Name,
			Variant: info.Variant,
			Index:   info.Index,
			X:       args[0],
		}, nil
	}

	if i, ok := b.funcIndex[e.Callee]; ok {
		return &Expr{Kind: ExprCall, Name: e.Callee, Index: i, Args: args}, nil
	}

	switch e.Callee {
	case "attr", "str":
		return &Expr{Kind: ExprBuiltin, Name: e.Callee, Args: args}, nil
	}
	return nil, b.internal(e.Pos, "unresolved callee %q", e.Callee)
}

func (b *builder) lowerRecordLit(e *ast.RecordLit, bound map[string]bool) (*Expr, error) {
	rec, ok := b.checked.Symbols.Types[e.TypeName]
	if !ok || rec.Kind != types.KindRecord {
		return nil, b.internal(e.Pos, "%q is not a record type", e.TypeName)
	}

	out := &Expr{Kind: ExprRecord, Name: e.TypeName}
	for _, init := range e.Fields {
		idx := -1
		for i, f := range rec.Fields {
			if f.Name == init.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, b.internal(init.Pos, "%s has no field %q", e.TypeName, init.Name)
		}
		value, err := b.lowerExpr(init.Value, bound)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, FieldInit{Index: idx, Name: init.Name, Value: value})
	}
	if e.Base != nil {
		base, err := b.lowerExpr(e.Base, bound)
		if err != nil {
			return nil, err
		}
		out.Base = base
	}
	return out, nil
}

func (b *builder) lowerMatch(e *ast.Match, bound map[string]bool) (*Expr, error) {
	scrutinee, err := b.lowerExpr(e.Scrutinee, bound)
	if err != nil {
		return nil, err
	}
	out := &Expr{Kind: ExprMatch, X: scrutinee}
	for _, arm := range e.Arms {
		armBound := make(map[string]bool, len(bound))
		for k := range bound {
			armBound[k] = true
		}
		pat, err := b.lowerPattern(arm.Pattern, armBound)
		if err != nil {
			return nil, err
		}
		body, err := b.lowerExpr(arm.Body, armBound)
		if err != nil {
			return nil, err
		}
		out.Arms = append(out.Arms, Arm{Pat: pat, Body: body})
	}
	return out, nil
}

// lowerPattern lowers one pattern and records its bindings into bound so the
// arm body sees them.
func (b *builder) lowerPattern(p ast.Pattern, bound map[string]bool) (*Pattern, error) {
	switch p := p.(type) {
	case *ast.WildcardPattern:
		return &Pattern{Kind: PatWildcard}, nil

	case *ast.BindPattern:
		bound[p.Name] = true
		return &Pattern{Kind: PatBind, Name: p.Name}, nil

	case *ast.LiteralPattern:
		switch lit := p.Literal.(type) {
		case *ast.IntLit:
			return &Pattern{Kind: PatInt, Int: lit.Value}, nil
		case *ast.BoolLit:
			return &Pattern{Kind: PatBool, Bool: lit.Value}, nil
		case *ast.StringLit:
			return &Pattern{Kind: PatString, Str: lit.Value}, nil
		default:
			return nil, b.internal(p.Pos, "literal pattern %T has no lowering", lit)
		}

	case *ast.CtorPattern:
		var sub *Pattern
		if len(p.Args) == 1 {
			lowered, err := b.lowerPattern(p.Args[0], bound)
			if err != nil {
				return nil, err
			}
			sub = lowered
		}
		switch p.Name {
		case "Some":
			return &Pattern{Kind: PatSome, Name: p.Name, Sub: sub}, nil
		case "None":
			return &Pattern{Kind: PatNone, Name: p.Name}, nil
		}
		info, ok := b.checked.Symbols.Ctors[p.Name]
		if !ok {
			return nil, b.internal(p.Pos, "unresolved constructor pattern %q", p.Name)
		}
		return &Pattern{Kind: PatVariant, Name: p.Name, Index: info.Index, Sub: sub}, nil

	default:
		return nil, b.internal(p.Position(), "pattern %T has no lowering", p)
	}
}
