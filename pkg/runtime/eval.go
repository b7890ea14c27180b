// Package runtime mounts compiled components and drives them: it evaluates
// lowered function bodies, renders the plan into a node tree, diffs
// successive trees into patches, and runs the per-instance dispatch loop.
//
// The compiler guarantees totality: a component that passed type checking
// cannot fault on an absent value at runtime. Evaluation errors therefore
// indicate a corrupted artifact, not a user mistake.
package runtime

import (
	"fmt"

	"github.com/glyph-dev/glyph/internal/ir"
	"github.com/glyph-dev/glyph/pkg/value"
)

// scope is the evaluation environment. Copy-on-extend keeps match-arm
// bindings from leaking.
type scope map[string]value.Value

func (s scope) extend() scope {
	child := make(scope, len(s)+2)
	for k, v := range s {
		child[k] = v
	}
	return child
}

// evaluator runs lowered expressions against a transition table.
type evaluator struct {
	table *ir.TransitionTable
}

func (ev *evaluator) callIndex(index int, args []value.Value) (value.Value, error) {
	if index < 0 || index >= len(ev.table.Funcs) {
		return value.Value{}, fmt.Errorf("function index %d out of range", index)
	}
	fn := ev.table.Funcs[index]
	if len(args) != len(fn.Params) {
		return value.Value{}, fmt.Errorf("%s: got %d arguments, want %d", fn.Name, len(args), len(fn.Params))
	}
	env := make(scope, len(args))
	for i, p := range fn.Params {
		env[p] = args[i]
	}
	return ev.eval(fn.Body, env)
}

func (ev *evaluator) eval(e *ir.Expr, env scope) (value.Value, error) {
	switch e.Kind {
	case ir.ExprInt:
		return value.IntVal(e.Int), nil
	case ir.ExprBool:
		return value.BoolVal(e.Bool), nil
	case ir.ExprString:
		return value.StringVal(e.Str), nil

	case ir.ExprLoad:
		v, ok := env[e.Name]
		if !ok {
			return value.Value{}, fmt.Errorf("unbound name %q", e.Name)
		}
		return v, nil

	case ir.ExprField:
		target, err := ev.eval(e.X, env)
		if err != nil {
			return value.Value{}, err
		}
		if target.Kind != value.KindRecord || e.Index >= len(target.Fields) {
			return value.Value{}, fmt.Errorf("field %d read on %s", e.Index, target.Kind)
		}
		return target.Field(e.Index), nil

	case ir.ExprUnary:
		return ev.evalUnary(e, env)
	case ir.ExprBinary:
		return ev.evalBinary(e, env)

	case ir.ExprCall:
		args := make([]value.Value, len(e.Args))
		for i, a := range e.Args {
			v, err := ev.eval(a, env)
			if err != nil {
				return value.Value{}, err
			}
			args[i] = v
		}
		return ev.callIndex(e.Index, args)

	case ir.ExprBuiltin:
		return ev.evalBuiltin(e, env)

	case ir.ExprRecord:
		return ev.evalRecord(e, env)

	case ir.ExprVariant:
		var payload *value.Value
		if e.X != nil {
			v, err := ev.eval(e.X, env)
			if err != nil {
				return value.Value{}, err
			}
			payload = &v
		}
		return value.VariantVal(e.Name, e.Variant, e.Index, payload), nil

	case ir.ExprSome:
		v, err := ev.eval(e.X, env)
		if err != nil {
			return value.Value{}, err
		}
		return value.SomeVal(v), nil

	case ir.ExprNone:
		return value.NoneVal(), nil

	case ir.ExprMatch:
		return ev.evalMatch(e, env)

	default:
		return value.Value{}, fmt.Errorf("expression kind %s has no evaluator", e.Kind)
	}
}

func (ev *evaluator) evalUnary(e *ir.Expr, env scope) (value.Value, error) {
	x, err := ev.eval(e.X, env)
	if err != nil {
		return value.Value{}, err
	}
	switch e.Op {
	case ir.OpNot:
		return value.BoolVal(!x.Bool), nil
	case ir.OpNeg:
		return value.IntVal(-x.Int), nil
	}
	return value.Value{}, fmt.Errorf("unary operator %s", e.Op)
}

func (ev *evaluator) evalBinary(e *ir.Expr, env scope) (value.Value, error) {
	x, err := ev.eval(e.X, env)
	if err != nil {
		return value.Value{}, err
	}

	// Short-circuit before evaluating the right side.
	switch e.Op {
	case ir.OpAnd:
		if !x.Bool {
			return value.BoolVal(false), nil
		}
	case ir.OpOr:
		if x.Bool {
			return value.BoolVal(true), nil
		}
	}

	y, err := ev.eval(e.Y, env)
	if err != nil {
		return value.Value{}, err
	}

	switch e.Op {
	case ir.OpAdd:
		return value.IntVal(x.Int + y.Int), nil
	case ir.OpSub:
		return value.IntVal(x.Int - y.Int), nil
	case ir.OpMul:
		return value.IntVal(x.Int * y.Int), nil
	case ir.OpDiv:
		if y.Int == 0 {
			return value.Value{}, fmt.Errorf("division by zero")
		}
		return value.IntVal(x.Int / y.Int), nil
	case ir.OpConcat:
		return value.StringVal(x.Str + y.Str), nil
	case ir.OpEq:
		return value.BoolVal(value.Equal(x, y)), nil
	case ir.OpNe:
		return value.BoolVal(!value.Equal(x, y)), nil
	case ir.OpLt:
		return value.BoolVal(x.Int < y.Int), nil
	case ir.OpGt:
		return value.BoolVal(x.Int > y.Int), nil
	case ir.OpLe:
		return value.BoolVal(x.Int <= y.Int), nil
	case ir.OpGe:
		return value.BoolVal(x.Int >= y.Int), nil
	case ir.OpAnd, ir.OpOr:
		return value.BoolVal(y.Bool), nil
	}
	return value.Value{}, fmt.Errorf("binary operator %s", e.Op)
}

func (ev *evaluator) evalBuiltin(e *ir.Expr, env scope) (value.Value, error) {
	args := make([]value.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.eval(a, env)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}

	switch e.Name {
	case "attr":
		if len(args) != 2 || args[0].Kind != value.KindAttrs {
			return value.Value{}, fmt.Errorf("attr: bad arguments")
		}
		if v, ok := args[0].Attrs[args[1].Str]; ok {
			return value.SomeVal(value.StringVal(v)), nil
		}
		return value.NoneVal(), nil
	case "str":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("str: bad arguments")
		}
		return value.StringVal(args[0].Display()), nil
	}
	return value.Value{}, fmt.Errorf("unknown builtin %q", e.Name)
}

func (ev *evaluator) evalRecord(e *ir.Expr, env scope) (value.Value, error) {
	overlay := make(map[int]value.Value, len(e.Fields))
	for _, f := range e.Fields {
		v, err := ev.eval(f.Value, env)
		if err != nil {
			return value.Value{}, err
		}
		overlay[f.Index] = v
	}

	if e.Base != nil {
		base, err := ev.eval(e.Base, env)
		if err != nil {
			return value.Value{}, err
		}
		if base.Kind != value.KindRecord {
			return value.Value{}, fmt.Errorf("record update over %s", base.Kind)
		}
		return base.WithFields(overlay), nil
	}

	// Without a base, the checker guarantees the overlay covers every field.
	fields := make([]value.Value, len(e.Fields))
	for i, v := range overlay {
		if i >= len(fields) {
			return value.Value{}, fmt.Errorf("field index %d out of range for %s", i, e.Name)
		}
		fields[i] = v
	}
	return value.RecordVal(e.Name, fields), nil
}

func (ev *evaluator) evalMatch(e *ir.Expr, env scope) (value.Value, error) {
	scrutinee, err := ev.eval(e.X, env)
	if err != nil {
		return value.Value{}, err
	}
	for _, arm := range e.Arms {
		armEnv := env.extend()
		if matchPattern(arm.Pat, scrutinee, armEnv) {
			return ev.eval(arm.Body, armEnv)
		}
	}
	// Unreachable for checked components: exhaustiveness is enforced at
	// compile time.
	return value.Value{}, fmt.Errorf("no arm matched %s", scrutinee)
}

// matchPattern tests a value against a lowered pattern, recording bindings
// into env on the way down.
func matchPattern(p *ir.Pattern, v value.Value, env scope) bool {
	switch p.Kind {
	case ir.PatWildcard:
		return true
	case ir.PatBind:
		env[p.Name] = v
		return true
	case ir.PatInt:
		return v.Kind == value.KindInt && v.Int == p.Int
	case ir.PatBool:
		return v.Kind == value.KindBool && v.Bool == p.Bool
	case ir.PatString:
		return v.Kind == value.KindString && v.Str == p.Str
	case ir.PatVariant:
		if v.Kind != value.KindVariant || v.Variant != p.Index {
			return false
		}
		if p.Sub == nil {
			return true
		}
		return v.Payload != nil && matchPattern(p.Sub, *v.Payload, env)
	case ir.PatSome:
		if v.Kind != value.KindSome {
			return false
		}
		if p.Sub == nil {
			return true
		}
		return v.Payload != nil && matchPattern(p.Sub, *v.Payload, env)
	case ir.PatNone:
		return v.Kind == value.KindNone
	default:
		return false
	}
}
