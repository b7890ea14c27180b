package types

import (
	"github.com/glyph-dev/glyph/internal/ast"
)

// checkTemplate validates every expression embedded in the template against
// the model and message schemas. Template scope exposes each model field by
// name plus the whole model as "model".
func (c *checker) checkTemplate(tpl *ast.Template) {
	scope := env{}
	if c.out.Model != nil {
		scope["model"] = c.out.Model
		for _, f := range c.out.Model.Fields {
			scope[f.Name] = f.Type
		}
	}
	c.checkTemplateNodes(tpl.Children, scope)
}

func (c *checker) checkTemplateNodes(nodes []ast.TemplateNode, scope env) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Element:
			for _, binding := range n.Events {
				c.checkEventBinding(binding, scope)
			}
			c.checkTemplateNodes(n.Children, scope)
		case *ast.ConditionalShow:
			c.checkExpr(n.Cond, scope, Bool)
			c.checkTemplateNodes(n.Children, scope)
		case *ast.Interp:
			c.checkInterp(n, scope)
		case *ast.Text:
			// Literal markup needs no checking.
		}
	}
}

// checkInterp requires interpolations to produce a renderable primitive. An
// option must go through a match so the None case is handled explicitly.
func (c *checker) checkInterp(n *ast.Interp, scope env) {
	t := c.checkExpr(n.Expr, scope, nil)
	if t == nil {
		return
	}
	switch t.Kind {
	case KindInt, KindBool, KindString:
		// Renderable.
	case KindOption:
		c.errorAt(n.Pos, "G208").
			WithDetailf("this interpolation has type %s; the None case is unhandled", t).
			WithSuggestion("wrap it in a match that also handles None").
			WithExample(`{ match title { Some(t) => t, None => "" } }`)
	default:
		c.errorAt(n.Pos, "G202").
			WithDetailf("cannot render a value of type %s as text", t)
	}
}

// checkEventBinding resolves the bound constructor against the Msg enum and
// embeds no runtime lookup: an unknown variant is a compile error.
func (c *checker) checkEventBinding(binding *ast.EventBinding, scope env) {
	if c.out.Msg == nil {
		c.errorAt(binding.Pos, "G207").
			WithDetailf("event on-%s is bound but no enum named %s is declared", binding.Event, MsgType)
		return
	}

	// Surface a clearer diagnostic than plain name resolution when the
	// binding names an undeclared variant directly.
	name := ""
	switch ctor := binding.Ctor.(type) {
	case *ast.Ref:
		name = ctor.Name
	case *ast.Call:
		name = ctor.Callee
	}
	if name != "" {
		if _, inScope := scope[name]; !inScope {
			if _, ok := c.out.Symbols.Ctors[name]; !ok && !c.isKnownCallable(name) {
				c.errorAt(binding.Pos, "G207").
					WithDetailf("enum %s has no variant %q", MsgType, name)
				return
			}
		}
	}

	c.checkExpr(binding.Ctor, scope, c.out.Msg)
}

func (c *checker) isKnownCallable(name string) bool {
	if name == "Some" || name == "None" {
		return true
	}
	_, ok := c.out.Symbols.Funcs[name]
	return ok
}
