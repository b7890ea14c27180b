package runtime

import (
	"strings"
	"testing"

	"github.com/glyph-dev/glyph/internal/codegen"
	"github.com/glyph-dev/glyph/internal/ir"
	"github.com/glyph-dev/glyph/internal/parser"
	"github.com/glyph-dev/glyph/internal/types"
	"github.com/glyph-dev/glyph/pkg/value"
)

func compile(t *testing.T, src string) *codegen.Artifact {
	t.Helper()
	comp, err := parser.ParseSource("counter.glyph", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	checked, diags := types.Check(comp)
	if diags.HasErrors() {
		t.Fatalf("check:\n%s", diags.Error())
	}
	lowered, err := ir.Build(checked)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	art, err := codegen.Generate(lowered, comp.Style, src)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return art
}

const counterSource = `<template>
  <div>
    <span>{ count }</span>
    <button on-click="Increment">+</button>
    <button on-click="Decrement">-</button>
  </div>
</template>
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

func mustMount(t *testing.T, art *codegen.Artifact, sink func([]Patch)) *Instance {
	t.Helper()
	inst, err := Mount(art, nil, sink)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	return inst
}

func TestDispatchSequence(t *testing.T) {
	inst := mustMount(t, compile(t, counterSource), nil)

	inc := value.VariantVal("Msg", "Increment", 0, nil)
	dec := value.VariantVal("Msg", "Decrement", 1, nil)
	for _, msg := range []value.Value{inc, inc, dec} {
		if err := inst.Dispatch(msg); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}

	if got := inst.Model().Field(0).Int; got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
	if !strings.Contains(inst.HTML(), ">1</span>") {
		t.Errorf("rendered html does not show the count: %s", inst.HTML())
	}
}

func TestUpdateDeterministic(t *testing.T) {
	art := compile(t, counterSource)
	a := mustMount(t, art, nil)
	b := mustMount(t, art, nil)

	inc := value.VariantVal("Msg", "Increment", 0, nil)
	for i := 0; i < 3; i++ {
		if err := a.Dispatch(inc); err != nil {
			t.Fatal(err)
		}
		if err := b.Dispatch(inc); err != nil {
			t.Fatal(err)
		}
	}
	if !value.Equal(a.Model(), b.Model()) {
		t.Errorf("same message sequence diverged: %v vs %v", a.Model(), b.Model())
	}
}

func TestRenderIdempotent(t *testing.T) {
	var batches [][]Patch
	inst := mustMount(t, compile(t, counterSource), func(p []Patch) {
		batches = append(batches, p)
	})

	first := inst.HTML()
	// Flushing with no pending messages renders the same model again.
	if err := inst.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := inst.Flush(); err != nil {
		t.Fatal(err)
	}
	if inst.HTML() != first {
		t.Error("re-render of unchanged model altered the tree")
	}
	for _, batch := range batches[1:] {
		if len(batch) != 0 {
			t.Errorf("unchanged model produced patches: %v", batch)
		}
	}
}

func TestCoalescedRender(t *testing.T) {
	var batches [][]Patch
	inst := mustMount(t, compile(t, counterSource), func(p []Patch) {
		batches = append(batches, p)
	})

	inc := value.VariantVal("Msg", "Increment", 0, nil)
	for i := 0; i < 3; i++ {
		if err := inst.Enqueue(inc); err != nil {
			t.Fatal(err)
		}
	}
	if err := inst.Flush(); err != nil {
		t.Fatal(err)
	}

	// One batch for mount, exactly one for the whole drain cycle.
	if len(batches) != 2 {
		t.Fatalf("got %d patch batches, want 2", len(batches))
	}
	cycle := batches[1]
	if len(cycle) != 1 || cycle[0].Op != PatchSetText || cycle[0].Value != "3" {
		t.Errorf("coalesced cycle = %v, want single SetText to 3", cycle)
	}
}

func TestFireListener(t *testing.T) {
	inst := mustMount(t, compile(t, counterSource), nil)

	// div is root 0; the increment button is its second child.
	if err := inst.Fire("0.1", "click"); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if got := inst.Model().Field(0).Int; got != 1 {
		t.Errorf("count = %d after click, want 1", got)
	}

	if err := inst.Fire("0.0", "click"); err == nil {
		t.Error("firing a listenerless node should fail")
	}
}

func TestConditionalShowToggles(t *testing.T) {
	src := `<template>
  <div>
    <p show-if="count > 0">positive</p>
    <button on-click="Increment">+</button>
  </div>
</template>
<script>
type Model = { count: int }
enum Msg = { Increment }
fn init(attrs: Attrs): Model { Model(count: 0) }
fn update(msg: Msg, model: Model): Model {
  match msg { Increment => Model(count: model.count + 1) }
}
</script>`
	inst := mustMount(t, compile(t, src), nil)

	if strings.Contains(inst.HTML(), "positive") {
		t.Fatal("gated subtree rendered while the gate is closed")
	}
	if err := inst.Dispatch(value.VariantVal("Msg", "Increment", 0, nil)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(inst.HTML(), "positive") {
		t.Error("gated subtree missing after the gate opened")
	}
}

func TestMaybeRenderedThroughMatch(t *testing.T) {
	src := `<template>
  <h1>{ match title { Some(t) => t, None => "untitled" } }</h1>
</template>
<script>
type Model = { title: Maybe<string> }
enum Msg = { Set(string) }
fn init(attrs: Attrs): Model {
  Model(title: attr(attrs, "title"))
}
fn update(msg: Msg, model: Model): Model {
  match msg { Set(t) => Model(title: Some(t)) }
}
</script>`
	art := compile(t, src)

	absent := mustMount(t, art, nil)
	if !strings.Contains(absent.HTML(), "untitled") {
		t.Errorf("absent title not defaulted: %s", absent.HTML())
	}

	present, err := Mount(art, map[string]string{"title": "hello"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(present.HTML(), "hello") {
		t.Errorf("host attribute not threaded through init: %s", present.HTML())
	}
}

func TestRecordUpdatePreservesFields(t *testing.T) {
	src := `<script>
type Model = { count: int, label: string }
enum Msg = { Bump }
fn init(attrs: Attrs): Model { Model(count: 0, label: "steady") }
fn update(msg: Msg, model: Model): Model {
  match msg { Bump => Model(count: model.count + 1, ..model) }
}
</script>`
	inst := mustMount(t, compile(t, src), nil)
	if err := inst.Dispatch(value.VariantVal("Msg", "Bump", 0, nil)); err != nil {
		t.Fatal(err)
	}
	m := inst.Model()
	if m.Field(0).Int != 1 {
		t.Errorf("count = %d, want 1", m.Field(0).Int)
	}
	if m.Field(1).Str != "steady" {
		t.Errorf("untouched field = %q, want steady", m.Field(1).Str)
	}
}

func TestUnmountStopsDispatch(t *testing.T) {
	inst := mustMount(t, compile(t, counterSource), nil)
	inst.Unmount()
	if err := inst.Dispatch(value.VariantVal("Msg", "Increment", 0, nil)); err == nil {
		t.Error("dispatch after unmount should fail")
	}
}

func TestScopedMarkerInHTML(t *testing.T) {
	src := `<template><p>hi</p></template>
<style>
  p { color: red; }
</style>`
	art := compile(t, src)
	inst := mustMount(t, art, nil)

	if !strings.Contains(inst.HTML(), art.Scope) {
		t.Errorf("rendered element not stamped: %s", inst.HTML())
	}
	if !strings.Contains(inst.CSS(), "["+art.Scope+"]") {
		t.Errorf("stylesheet not scoped: %s", inst.CSS())
	}
}
