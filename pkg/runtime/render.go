package runtime

import (
	"fmt"

	"github.com/glyph-dev/glyph/internal/ir"
	"github.com/glyph-dev/glyph/pkg/value"
)

// render evaluates the plan against a model and produces the node tree. It is
// a pure function of the model: the same model always yields an identical
// tree, which is what makes render coalescing safe.
func (ev *evaluator) render(plan *ir.RenderPlan, env scope) ([]*Node, error) {
	return ev.renderNodes(plan.Roots, env)
}

func (ev *evaluator) renderNodes(nodes []*ir.PlanNode, env scope) ([]*Node, error) {
	var out []*Node
	for _, n := range nodes {
		rendered, err := ev.renderNode(n, env)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered...)
	}
	return out, nil
}

// renderNode returns zero or more nodes: a conditional contributes its
// children inline when the gate is open and nothing at all when it is closed.
func (ev *evaluator) renderNode(n *ir.PlanNode, env scope) ([]*Node, error) {
	switch n.Kind {
	case ir.PlanText:
		return []*Node{{Kind: NodeText, Text: n.Text}}, nil

	case ir.PlanInterp:
		v, err := ev.eval(n.Expr, env)
		if err != nil {
			return nil, err
		}
		return []*Node{{Kind: NodeText, Text: v.Display()}}, nil

	case ir.PlanCond:
		gate, err := ev.eval(n.Expr, env)
		if err != nil {
			return nil, err
		}
		if gate.Kind != value.KindBool {
			return nil, fmt.Errorf("show gate evaluated to %s", gate.Kind)
		}
		if !gate.Bool {
			return nil, nil
		}
		return ev.renderNodes(n.Children, env)

	case ir.PlanElement:
		node := &Node{Kind: NodeElement, Tag: n.Tag}
		for _, a := range n.Attrs {
			node.Attrs = append(node.Attrs, Attr{Name: a.Name, Value: a.Value})
		}
		for _, l := range n.Listeners {
			msg, err := ev.eval(l.Msg, env)
			if err != nil {
				return nil, err
			}
			node.Listeners = append(node.Listeners, Listener{Event: l.Event, Msg: msg})
		}
		children, err := ev.renderNodes(n.Children, env)
		if err != nil {
			return nil, err
		}
		node.Children = children
		return []*Node{node}, nil

	default:
		return nil, fmt.Errorf("plan node kind %s has no renderer", n.Kind)
	}
}

// templateScope builds the evaluation environment a template sees: the model
// itself plus each field by bare name.
func templateScope(schema *ir.ModelSchema, model value.Value) scope {
	env := make(scope, len(schema.Fields)+1)
	env["model"] = model
	if model.Kind == value.KindRecord {
		for _, f := range schema.Fields {
			if f.Index < len(model.Fields) {
				env[f.Name] = model.Field(f.Index)
			}
		}
	}
	return env
}
