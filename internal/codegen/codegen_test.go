package codegen

import (
	"strings"
	"testing"

	"github.com/glyph-dev/glyph/internal/ir"
	"github.com/glyph-dev/glyph/internal/parser"
	"github.com/glyph-dev/glyph/internal/types"
)

func generate(t *testing.T, src string) *Artifact {
	t.Helper()
	comp, err := parser.ParseSource("card.glyph", src)
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
	art, err := Generate(lowered, comp.Style, src)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return art
}

const cardSource = `<template>
  <div class="card">
    <p>hello</p>
  </div>
</template>
<style>
  .card { padding: 1rem; color: #333; }
  .card > p, .card span { margin: 0; }
</style>
<script>
type Model = { count: int }
fn init(attrs: Attrs): Model { Model(count: 0) }
</script>`

func TestScopeMarkerIsStable(t *testing.T) {
	a := generate(t, cardSource)
	b := generate(t, cardSource)
	if a.Scope != b.Scope {
		t.Errorf("same source produced markers %q and %q", a.Scope, b.Scope)
	}
	if !strings.HasPrefix(a.Scope, "data-g-") {
		t.Errorf("marker %q lacks data-g- prefix", a.Scope)
	}
}

func TestScopeMarkerDiffersAcrossComponents(t *testing.T) {
	a := generate(t, cardSource)
	b := generate(t, strings.Replace(cardSource, "hello", "goodbye", 1))
	if a.Scope == b.Scope {
		t.Errorf("different sources share marker %q", a.Scope)
	}
}

func TestEveryCompoundSelectorScoped(t *testing.T) {
	a := generate(t, cardSource)
	marker := "[" + a.Scope + "]"

	wantLines := []string{
		".card" + marker + " {",
		".card" + marker + " > p" + marker + ", .card" + marker + " span" + marker + " {",
		"  padding: 1rem;",
		"  color: #333;",
		"  margin: 0;",
	}
	for _, want := range wantLines {
		if !strings.Contains(a.CSS, want) {
			t.Errorf("scoped css missing %q:\n%s", want, a.CSS)
		}
	}
	// No selector escapes the scope.
	for _, line := range strings.Split(a.CSS, "\n") {
		if strings.HasSuffix(line, "{") && !strings.Contains(line, marker) {
			t.Errorf("unscoped rule head: %q", line)
		}
	}
}

func TestElementsStampedWithMarker(t *testing.T) {
	a := generate(t, cardSource)

	var walk func(nodes []*ir.PlanNode)
	walk = func(nodes []*ir.PlanNode) {
		for _, n := range nodes {
			if n.Kind == ir.PlanElement {
				found := false
				for _, attr := range n.Attrs {
					if attr.Name == a.Scope {
						found = true
					}
				}
				if !found {
					t.Errorf("<%s> not stamped with %s", n.Tag, a.Scope)
				}
			}
			walk(n.Children)
		}
	}
	walk(a.Component.Plan.Roots)
}

func TestGenerateIsIdempotentOnPlan(t *testing.T) {
	// Stamping the same component twice must not duplicate the marker.
	a := generate(t, cardSource)
	art, err := Generate(a.Component, nil, cardSource)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	div := art.Component.Plan.Roots[0]
	n := 0
	for _, attr := range div.Attrs {
		if attr.Name == art.Scope {
			n++
		}
	}
	if n != 1 {
		t.Errorf("marker stamped %d times", n)
	}
}

func TestEmptyStyleProducesNoCSS(t *testing.T) {
	a := generate(t, `<template><p>hi</p></template>`)
	if a.CSS != "" {
		t.Errorf("want empty css, got %q", a.CSS)
	}
}

func TestSourceHashStable(t *testing.T) {
	if SourceHash("abc") != SourceHash("abc") {
		t.Error("hash not stable")
	}
	if SourceHash("abc") == SourceHash("abd") {
		t.Error("hash collision on trivially different inputs")
	}
}
