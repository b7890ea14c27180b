package ir

import (
	"testing"

	"github.com/glyph-dev/glyph/internal/parser"
	"github.com/glyph-dev/glyph/internal/types"
)

func lower(t *testing.T, src string) *Component {
	t.Helper()
	comp, err := parser.ParseSource("counter.glyph", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	checked, diags := types.Check(comp)
	if diags.HasErrors() {
		t.Fatalf("check:\n%s", diags.Error())
	}
	lowered, err := Build(checked)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return lowered
}

const counterSource = `<template>
  <div class="counter">
    <p show-if="count > 0">count is { count }</p>
    <button on-click="Increment">+</button>
    <button on-click="Decrement">-</button>
  </div>
</template>
<style>
  .counter { padding: 1rem; }
</style>
<script>
type Model = { count: int }
enum Msg = { Increment | Decrement }
fn init(attrs: Attrs): Model { Model(count: 0) }
fn update(msg: Msg, model: Model): Model {
  match msg {
    Increment => Model(count: model.count + 1),
    Decrement => Model(count: model.count - 1),
  }
}
</script>`

func TestBuildCounterSchemas(t *testing.T) {
	c := lower(t, counterSource)

	if c.Model.Name != "Model" || len(c.Model.Fields) != 1 {
		t.Fatalf("model schema = %+v", c.Model)
	}
	if f := c.Model.Fields[0]; f.Name != "count" || f.Type != "int" || f.Index != 0 {
		t.Errorf("count field schema = %+v", f)
	}

	if c.Msg == nil {
		t.Fatal("missing msg schema")
	}
	want := []VariantSchema{
		{Name: "Increment", Index: 0},
		{Name: "Decrement", Index: 1},
	}
	if len(c.Msg.Variants) != len(want) {
		t.Fatalf("got %d variants", len(c.Msg.Variants))
	}
	for i, v := range c.Msg.Variants {
		if v != want[i] {
			t.Errorf("variant[%d] = %+v, want %+v", i, v, want[i])
		}
	}
}

func TestBuildEntryPointIndices(t *testing.T) {
	c := lower(t, counterSource)
	if c.Table.Init < 0 || c.Table.Funcs[c.Table.Init].Name != "init" {
		t.Errorf("init index %d does not point at init", c.Table.Init)
	}
	if c.Table.Update < 0 || c.Table.Funcs[c.Table.Update].Name != "update" {
		t.Errorf("update index %d does not point at update", c.Table.Update)
	}
	for _, f := range c.Table.Funcs {
		if f.Body == nil {
			t.Errorf("func %s has no body", f.Name)
		}
	}
}

func TestListenerResolvedToVariantIndex(t *testing.T) {
	c := lower(t, counterSource)

	div := c.Plan.Roots[0]
	if div.Kind != PlanElement || div.Tag != "div" {
		t.Fatalf("root = %+v", div)
	}
	var listeners []Listener
	for _, child := range div.Children {
		listeners = append(listeners, child.Listeners...)
	}
	if len(listeners) != 2 {
		t.Fatalf("got %d listeners, want 2", len(listeners))
	}
	for i, l := range listeners {
		if l.Event != "click" {
			t.Errorf("listener[%d].Event = %q", i, l.Event)
		}
		if l.Msg.Kind != ExprVariant || l.Msg.Index != i {
			t.Errorf("listener[%d].Msg = %+v, want variant index %d", i, l.Msg, i)
		}
	}
}

func TestConditionalAndInterpLowering(t *testing.T) {
	c := lower(t, counterSource)

	div := c.Plan.Roots[0]
	cond := div.Children[0]
	if cond.Kind != PlanCond {
		t.Fatalf("first child = %+v, want conditional", cond)
	}
	if cond.Expr.Kind != ExprBinary || cond.Expr.Op != OpGt {
		t.Errorf("condition = %+v", cond.Expr)
	}

	// Conditional wraps the <p>; its children are the literal run and the
	// interpolation.
	p := cond.Children[0]
	if p.Kind != PlanElement || p.Tag != "p" {
		t.Fatalf("gated element = %+v", p)
	}
	if p.Children[0].Kind != PlanText {
		t.Errorf("want literal text first, got %+v", p.Children[0])
	}
	interp := p.Children[1]
	if interp.Kind != PlanInterp || interp.Expr.Kind != ExprLoad || interp.Expr.Name != "count" {
		t.Errorf("interpolation = %+v", interp)
	}
}

func TestFieldReadLoweredToIndex(t *testing.T) {
	c := lower(t, `<script>
type Model = { count: int, name: string }
fn init(attrs: Attrs): Model { Model(count: 0, name: "x") }
fn pick(model: Model): string { model.name }
</script>`)

	body := c.FuncNamed("pick").Body
	if body.Kind != ExprField || body.Index != 1 || body.Name != "name" {
		t.Errorf("field read = %+v, want index 1", body)
	}
	if body.X.Kind != ExprLoad || body.X.Name != "model" {
		t.Errorf("field target = %+v", body.X)
	}
}

func TestStringPlusLowersToConcat(t *testing.T) {
	c := lower(t, `<script>
type Model = { name: string }
fn init(attrs: Attrs): Model { Model(name: "a" + "b") }
fn total(model: Model): int { 1 + 2 }
</script>`)

	init := c.FuncNamed("init").Body
	if concat := init.Fields[0].Value; concat.Op != OpConcat {
		t.Errorf("string + lowered to %v, want ++", concat.Op)
	}
	if add := c.FuncNamed("total").Body; add.Op != OpAdd {
		t.Errorf("int + lowered to %v, want +", add.Op)
	}
}

func TestRecordUpdateKeepsBase(t *testing.T) {
	c := lower(t, `<script>
type Model = { count: int, name: string }
fn init(attrs: Attrs): Model { Model(count: 0, name: "x") }
fn bump(model: Model): Model { Model(count: model.count + 1, ..model) }
</script>`)

	body := c.FuncNamed("bump").Body
	if body.Kind != ExprRecord || body.Base == nil {
		t.Fatalf("record update = %+v", body)
	}
	if len(body.Fields) != 1 || body.Fields[0].Index != 0 {
		t.Errorf("overlay fields = %+v", body.Fields)
	}
	if body.Base.Kind != ExprLoad || body.Base.Name != "model" {
		t.Errorf("base = %+v", body.Base)
	}
}

func TestMatchPatternLowering(t *testing.T) {
	c := lower(t, `<script>
type Model = { title: Maybe<string> }
enum Msg = { Clear | Set(Maybe<string>) }
fn init(attrs: Attrs): Model { Model(title: None) }
fn update(msg: Msg, model: Model): Model {
  match msg {
    Clear => Model(title: None),
    Set(Some(v)) => Model(title: Some(v)),
    Set(None) => Model(title: None),
  }
}
</script>`)

	m := c.FuncNamed("update").Body
	if m.Kind != ExprMatch || len(m.Arms) != 3 {
		t.Fatalf("match = %+v", m)
	}
	if p := m.Arms[0].Pat; p.Kind != PatVariant || p.Index != 0 {
		t.Errorf("Clear pattern = %+v", p)
	}
	set := m.Arms[1].Pat
	if set.Kind != PatVariant || set.Index != 1 {
		t.Fatalf("Set pattern = %+v", set)
	}
	if set.Sub.Kind != PatSome || set.Sub.Sub.Kind != PatBind || set.Sub.Sub.Name != "v" {
		t.Errorf("Set payload pattern = %+v", set.Sub)
	}
	if p := m.Arms[2].Pat.Sub; p.Kind != PatNone {
		t.Errorf("Set(None) payload pattern = %+v", p)
	}
	// The bound v is visible in the arm body.
	some := m.Arms[1].Body.Fields[0].Value
	if some.Kind != ExprSome || some.X.Kind != ExprLoad || some.X.Name != "v" {
		t.Errorf("arm body = %+v", some)
	}
}
