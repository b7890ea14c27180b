package types

import (
	"strings"
	"testing"

	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/parser"
)

// check parses and type-checks in-memory component source.
func check(t *testing.T, src string) (*Checked, errors.List) {
	t.Helper()
	comp, err := parser.ParseSource("test.glyph", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Check(comp)
}

// mustFailWith asserts that checking fails and some diagnostic carries the
// given code and mentions the given fragment.
func mustFailWith(t *testing.T, src, code, fragment string) errors.List {
	t.Helper()
	checked, diags := check(t, src)
	if checked != nil {
		t.Fatal("expected type errors, got none")
	}
	for _, d := range diags {
		if d.Code == code && strings.Contains(d.Detail, fragment) {
			return diags
		}
	}
	t.Fatalf("no %s diagnostic mentioning %q in:\n%s", code, fragment, diags.Error())
	return nil
}

const counterScript = `<script>
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

func TestCheckCounter(t *testing.T) {
	checked, diags := check(t, counterScript)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", diags.Error())
	}
	if checked.Model == nil || checked.Model.Name != "Model" {
		t.Fatal("Model type not resolved")
	}
	if checked.Msg == nil || len(checked.Msg.Variants) != 2 {
		t.Fatal("Msg enum not resolved")
	}
}

func TestDuplicateDeclaration(t *testing.T) {
	// Two type declarations sharing the name Model.
	mustFailWith(t, `<script>
type Model = { count: int }
type Model = { title: string }
fn init(attrs: Attrs): Model { Model(count: 0) }
</script>`, "G201", "Model")
}

func TestDuplicateConstructorAcrossEnums(t *testing.T) {
	mustFailWith(t, `<script>
type Model = { count: int }
enum Msg = { Go }
enum Other = { Go }
fn init(attrs: Attrs): Model { Model(count: 0) }
fn update(msg: Msg, model: Model): Model { model }
</script>`, "G201", "Go")
}

func TestUnknownTypeReference(t *testing.T) {
	mustFailWith(t, `<script>
type Model = { items: Basket }
fn init(attrs: Attrs): Model { Model(items: 0) }
</script>`, "G200", "Basket")
}

func TestNonExhaustiveEnumMatch(t *testing.T) {
	diags := mustFailWith(t, `<script>
type Model = { count: int }
enum Msg = { Increment | Decrement | Reset }
fn init(attrs: Attrs): Model { Model(count: 0) }
fn update(msg: Msg, model: Model): Model {
  match msg {
    Increment => Model(count: model.count + 1),
    Decrement => Model(count: model.count - 1),
  }
}
</script>`, "G203", "Reset")
	// The diagnostic names the uncovered shape.
	found := false
	for _, d := range diags {
		if strings.Contains(d.Detail, "Reset") {
			found = true
		}
	}
	if !found {
		t.Error("missing pattern list should name Reset")
	}
}

func TestMaybeMatchMissingNone(t *testing.T) {
	mustFailWith(t, `<script>
type Model = { title: Maybe<string> }
fn init(attrs: Attrs): Model { Model(title: None) }
fn label(model: Model): string {
  match model.title {
    Some(t) => t,
  }
}
</script>`, "G203", "None")
}

func TestWildcardCoversRemainder(t *testing.T) {
	_, diags := check(t, `<script>
type Model = { count: int }
enum Msg = { Increment | Decrement | Reset }
fn init(attrs: Attrs): Model { Model(count: 0) }
fn update(msg: Msg, model: Model): Model {
  match msg {
    Increment => Model(count: model.count + 1),
    _ => model,
  }
}
</script>`)
	if diags.HasErrors() {
		t.Fatalf("wildcard should cover the remaining variants:\n%s", diags.Error())
	}
}

func TestNestedPayloadExhaustiveness(t *testing.T) {
	// The Set payload is Maybe<string>; matching only Set(Some(v)) leaves
	// Set(None) uncovered.
	mustFailWith(t, `<script>
type Model = { title: Maybe<string> }
enum Msg = { Clear | Set(Maybe<string>) }
fn init(attrs: Attrs): Model { Model(title: None) }
fn update(msg: Msg, model: Model): Model {
  match msg {
    Clear => Model(title: None),
    Set(Some(v)) => Model(title: Some(v)),
  }
}
</script>`, "G203", "Set(None)")
}

func TestBoolMatchNeedsBothLiterals(t *testing.T) {
	mustFailWith(t, `<script>
type Model = { on: bool }
fn init(attrs: Attrs): Model { Model(on: false) }
fn flip(model: Model): string {
  match model.on {
    true => "on",
  }
}
</script>`, "G203", "false")
}

func TestEntryPointSignatures(t *testing.T) {
	// update with swapped parameters is rejected.
	mustFailWith(t, `<script>
type Model = { count: int }
enum Msg = { Tick }
fn init(attrs: Attrs): Model { Model(count: 0) }
fn update(model: Model, msg: Msg): Model { model }
</script>`, "G204", "update must have shape")
}

func TestMissingInit(t *testing.T) {
	mustFailWith(t, `<script>
type Model = { count: int }
enum Msg = { Tick }
fn update(msg: Msg, model: Model): Model { model }
</script>`, "G209", "init")
}

func TestRecordLiteralMissingField(t *testing.T) {
	mustFailWith(t, `<script>
type Model = { count: int, name: string }
fn init(attrs: Attrs): Model { Model(count: 0) }
</script>`, "G202", `"name"`)
}

func TestRecordUpdatePermitsPartialFields(t *testing.T) {
	_, diags := check(t, `<script>
type Model = { count: int, name: string }
fn init(attrs: Attrs): Model { Model(count: 0, name: "x") }
fn bump(model: Model): Model { Model(count: model.count + 1, ..model) }
</script>`)
	if diags.HasErrors() {
		t.Fatalf("record update should not require every field:\n%s", diags.Error())
	}
}

func TestTypeMismatchCollectsAllErrors(t *testing.T) {
	// Two independent mismatches must both be reported.
	_, diags := check(t, `<script>
type Model = { count: int, name: string }
fn init(attrs: Attrs): Model { Model(count: "zero", name: 5) }
</script>`)
	mismatches := 0
	for _, d := range diags {
		if d.Code == "G202" {
			mismatches++
		}
	}
	if mismatches < 2 {
		t.Fatalf("want both mismatches reported, got %d:\n%s", mismatches, diags.Error())
	}
}

func TestTemplateInterpolatesMaybeWithoutMatch(t *testing.T) {
	// Scenario: Maybe field interpolated directly; the diagnostic names the
	// unhandled None case.
	mustFailWith(t, `<template>
  <h1>{ title }</h1>
</template>
<script>
type Model = { title: Maybe<string> }
fn init(attrs: Attrs): Model { Model(title: None) }
</script>`, "G208", "None")
}

func TestTemplateInterpolationWithMatchAccepted(t *testing.T) {
	_, diags := check(t, `<template>
  <h1>{ match title { Some(t) => t, None => "untitled" } }</h1>
</template>
<script>
type Model = { title: Maybe<string> }
fn init(attrs: Attrs): Model { Model(title: None) }
</script>`)
	if diags.HasErrors() {
		t.Fatalf("matched interpolation should pass:\n%s", diags.Error())
	}
}

func TestEventBindingUnknownVariant(t *testing.T) {
	mustFailWith(t, `<template>
  <button on-click="Launch">go</button>
</template>
<script>
type Model = { count: int }
enum Msg = { Increment }
fn init(attrs: Attrs): Model { Model(count: 0) }
fn update(msg: Msg, model: Model): Model {
  match msg { Increment => Model(count: model.count + 1) }
}
</script>`, "G207", "Launch")
}

func TestEventBindingWithPayload(t *testing.T) {
	_, diags := check(t, `<template>
  <button on-click="SetCount(0)">reset</button>
</template>
<script>
type Model = { count: int }
enum Msg = { SetCount(int) }
fn init(attrs: Attrs): Model { Model(count: 0) }
fn update(msg: Msg, model: Model): Model {
  match msg { SetCount(n) => Model(count: n) }
}
</script>`)
	if diags.HasErrors() {
		t.Fatalf("payload constructor binding should pass:\n%s", diags.Error())
	}
}

func TestConditionalShowRequiresBool(t *testing.T) {
	mustFailWith(t, `<template>
  <p show-if="count">visible</p>
</template>
<script>
type Model = { count: int }
fn init(attrs: Attrs): Model { Model(count: 0) }
</script>`, "G202", "bool")
}

func TestAttrBuiltinReturnsMaybe(t *testing.T) {
	_, diags := check(t, `<script>
type Model = { title: string }
fn init(attrs: Attrs): Model {
  Model(title: match attr(attrs, "title") {
    Some(t) => t,
    None => "untitled",
  })
}
</script>`)
	if diags.HasErrors() {
		t.Fatalf("attr builtin should check:\n%s", diags.Error())
	}
}

func TestDiagnosticsSortedByPosition(t *testing.T) {
	_, diags := check(t, `<script>
type Model = { a: Missing1, b: Missing2 }
fn init(attrs: Attrs): Model { Model(a: 0, b: 0) }
</script>`)
	if len(diags) < 2 {
		t.Fatalf("want at least two diagnostics, got %d", len(diags))
	}
	for i := 1; i < len(diags); i++ {
		prev, cur := diags[i-1].Location, diags[i].Location
		if prev == nil || cur == nil {
			continue
		}
		if prev.Line > cur.Line {
			t.Errorf("diagnostics out of order: %v before %v", prev, cur)
		}
	}
}
