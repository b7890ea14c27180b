package source

import (
	"strings"
	"testing"

	glyphErrors "github.com/glyph-dev/glyph/internal/errors"
)

const counterSrc = `# A counting button.
<template>
  <button on-click="Increment">Count: { count }</button>
</template>

<style>
  button { color: blue; }
</style>

<script>
type Model = { count: int }
enum Msg = { Increment }
</script>
`

func TestSplitSections(t *testing.T) {
	file, err := Split("counter.glyph", counterSrc)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	if file.Name != "counter" {
		t.Errorf("Name = %q, want counter", file.Name)
	}
	if file.Template == nil || file.Style == nil || file.Script == nil {
		t.Fatalf("expected all three sections, got %+v", file)
	}
	if !strings.Contains(file.Template.Source, "<button") {
		t.Errorf("template source = %q", file.Template.Source)
	}
	if !strings.Contains(file.Style.Source, "color: blue") {
		t.Errorf("style source = %q", file.Style.Source)
	}
	if !strings.Contains(file.Script.Source, "enum Msg") {
		t.Errorf("script source = %q", file.Script.Source)
	}

	// The script section opens on line 10; its source begins right after
	// the tag on the same line.
	if file.Script.Base.Line != 10 {
		t.Errorf("script base line = %d, want 10", file.Script.Base.Line)
	}
}

func TestSplitMissingSectionsAllowed(t *testing.T) {
	file, err := Split("static.glyph", "<template><p>hi</p></template>")
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	if file.Template == nil {
		t.Error("template should be present")
	}
	if file.Style != nil || file.Script != nil {
		t.Error("absent sections should be nil")
	}
}

func TestSplitDuplicateSection(t *testing.T) {
	_, err := Split("dup.glyph", "<style>a{}</style>\n<style>b{}</style>")
	ge, ok := err.(*glyphErrors.GlyphError)
	if !ok || ge.Code != "G102" {
		t.Fatalf("err = %v, want G102", err)
	}
}

func TestSplitUnclosedSection(t *testing.T) {
	_, err := Split("open.glyph", "<script>enum Msg = { A }")
	ge, ok := err.(*glyphErrors.GlyphError)
	if !ok || ge.Code != "G101" {
		t.Fatalf("err = %v, want G101", err)
	}
}

func TestSplitStrayContent(t *testing.T) {
	_, err := Split("stray.glyph", "hello\n<template></template>")
	ge, ok := err.(*glyphErrors.GlyphError)
	if !ok || ge.Code != "G103" {
		t.Fatalf("err = %v, want G103", err)
	}
}

func TestSplitNestedTemplateTags(t *testing.T) {
	src := "<template><template></template></template>"
	file, err := Split("nest.glyph", src)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	if file.Template.Source != "<template></template>" {
		t.Errorf("template source = %q", file.Template.Source)
	}
}
