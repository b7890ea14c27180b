package lexer

import (
	"testing"

	glyphErrors "github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/token"
)

func kinds(t *testing.T, l *Lexer) []token.Kind {
	t.Helper()
	toks, err := l.Tokens()
	if err != nil {
		t.Fatalf("Tokens() error: %v", err)
	}
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScriptTokens(t *testing.T) {
	src := `fn update(msg: Msg, model: Model): Model {
    match msg {
        Increment => Model(count: model.count + 1, ..model),
    }
}`
	l := NewScript("test.glyph", src, token.Pos{})
	toks, err := l.Tokens()
	if err != nil {
		t.Fatalf("Tokens() error: %v", err)
	}

	want := []token.Kind{
		token.KwFn, token.Ident, token.LParen, token.Ident, token.Colon,
		token.Ident, token.Comma, token.Ident, token.Colon, token.Ident,
		token.RParen, token.Colon, token.Ident, token.LBrace,
		token.KwMatch, token.Ident, token.LBrace,
		token.Ident, token.Arrow, token.Ident, token.LParen, token.Ident,
		token.Colon, token.Ident, token.Dot, token.Ident, token.Plus,
		token.Int, token.Comma, token.DotDot, token.Ident, token.RParen,
		token.Comma, token.RBrace, token.RBrace, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("token count = %d, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestScriptCommentsStripped(t *testing.T) {
	src := "# leading comment\nenum Msg = { A | B } # trailing comment\n"
	l := NewScript("test.glyph", src, token.Pos{})
	got := kinds(t, l)
	want := []token.Kind{
		token.KwEnum, token.Ident, token.Assign, token.LBrace,
		token.Ident, token.Pipe, token.Ident, token.RBrace, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScriptPositions(t *testing.T) {
	src := "type Model = {\n  count: int\n}"
	l := NewScript("test.glyph", src, token.Pos{Line: 5, Column: 1})
	toks, err := l.Tokens()
	if err != nil {
		t.Fatalf("Tokens() error: %v", err)
	}

	// "count" is the 5th token, on file line 6 column 3.
	count := toks[4]
	if count.Lexeme != "count" {
		t.Fatalf("token 4 = %q, want count", count.Lexeme)
	}
	if count.Pos.Line != 6 || count.Pos.Column != 3 {
		t.Errorf("count pos = %d:%d, want 6:3", count.Pos.Line, count.Pos.Column)
	}
}

func TestScriptUnexpectedCharacter(t *testing.T) {
	l := NewScript("test.glyph", "fn init(): Model { $ }", token.Pos{})
	_, err := l.Tokens()
	if err == nil {
		t.Fatal("expected lex error for $")
	}
	ge, ok := err.(*glyphErrors.GlyphError)
	if !ok {
		t.Fatalf("error type = %T, want *GlyphError", err)
	}
	if ge.Code != "G001" {
		t.Errorf("code = %s, want G001", ge.Code)
	}
	if ge.Location == nil || ge.Location.Column != 20 {
		t.Errorf("location = %v, want column 20", ge.Location)
	}
}

func TestScriptUnterminatedString(t *testing.T) {
	l := NewScript("test.glyph", `fn f(): string { "abc }`, token.Pos{})
	_, err := l.Tokens()
	ge, ok := err.(*glyphErrors.GlyphError)
	if !ok || ge.Code != "G002" {
		t.Fatalf("err = %v, want G002", err)
	}
}

func TestMarkupTokens(t *testing.T) {
	src := `<div class="box"><p show-if="visible">Hello { name }</p></div>`
	l := NewMarkup("test.glyph", src, token.Pos{})
	toks, err := l.Tokens()
	if err != nil {
		t.Fatalf("Tokens() error: %v", err)
	}

	want := []token.Kind{
		token.TagOpen, token.Ident, token.Ident, token.Assign, token.String, token.TagClose,
		token.TagOpen, token.Ident, token.Ident, token.Assign, token.String, token.TagClose,
		token.Text, token.LBrace,
		token.TagEndOpen, token.Ident, token.TagClose,
		token.TagEndOpen, token.Ident, token.TagClose,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("token count = %d, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d = %v, want %v", i, toks[i], k)
		}
	}

	// The interpolation token carries its raw expression source.
	if toks[13].Lexeme != " name " {
		t.Errorf("interpolation source = %q, want %q", toks[13].Lexeme, " name ")
	}
	// Dashed attribute names lex as single identifiers.
	if toks[8].Lexeme != "show-if" {
		t.Errorf("attr name = %q, want show-if", toks[8].Lexeme)
	}
}

func TestMarkupSelfClosingTag(t *testing.T) {
	l := NewMarkup("test.glyph", `<input type="text" />`, token.Pos{})
	got := kinds(t, l)
	want := []token.Kind{
		token.TagOpen, token.Ident, token.Ident, token.Assign, token.String,
		token.TagSelfClose, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMarkupUnterminatedInterpolation(t *testing.T) {
	l := NewMarkup("test.glyph", "<p>{ name</p>", token.Pos{})
	_, err := l.Tokens()
	ge, ok := err.(*glyphErrors.GlyphError)
	if !ok || ge.Code != "G003" {
		t.Fatalf("err = %v, want G003", err)
	}
}

func TestMarkupNestedBracesInInterpolation(t *testing.T) {
	src := `<p>{ match title { Some(t) => t, None => "untitled" } }</p>`
	l := NewMarkup("test.glyph", src, token.Pos{})
	toks, err := l.Tokens()
	if err != nil {
		t.Fatalf("Tokens() error: %v", err)
	}
	var interp *token.Token
	for i := range toks {
		if toks[i].Kind == token.LBrace {
			interp = &toks[i]
		}
	}
	if interp == nil {
		t.Fatal("no interpolation token found")
	}
	want := ` match title { Some(t) => t, None => "untitled" } `
	if interp.Lexeme != want {
		t.Errorf("interpolation source = %q, want %q", interp.Lexeme, want)
	}
}

func TestStyleTokens(t *testing.T) {
	src := ".box > p { margin: 1.5rem; color: #fff; }"
	l := NewStyle("test.glyph", src, token.Pos{})
	got := kinds(t, l)
	want := []token.Kind{
		token.Dot, token.Ident, token.Gt, token.Ident, token.LBrace,
		token.Ident, token.Colon, token.Int, token.Semi,
		token.Ident, token.Colon, token.Hash, token.Ident, token.Semi,
		token.RBrace, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRestartable(t *testing.T) {
	l := NewScript("test.glyph", "enum Msg = { A }", token.Pos{})
	first, err := l.Tokens()
	if err != nil {
		t.Fatal(err)
	}
	l.Reset()
	second, err := l.Tokens()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("restart token count = %d, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("token %d differs after reset: %v vs %v", i, first[i], second[i])
		}
	}
}
