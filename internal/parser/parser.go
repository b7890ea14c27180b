// Package parser builds the template, style, and script syntax trees from
// the section token streams. Parsing is single-shot: the first structural
// violation aborts with a parse error, and no recovery is attempted.
package parser

import (
	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/lexer"
	"github.com/glyph-dev/glyph/internal/source"
	"github.com/glyph-dev/glyph/internal/token"
)

// ParseFile splits and parses a component file from disk.
func ParseFile(path string) (*ast.ComponentSource, error) {
	file, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	return Parse(file)
}

// ParseSource splits and parses in-memory component source.
func ParseSource(path, content string) (*ast.ComponentSource, error) {
	file, err := source.Split(path, content)
	if err != nil {
		return nil, err
	}
	return Parse(file)
}

// Parse parses every section of a split component file.
func Parse(file *source.File) (*ast.ComponentSource, error) {
	comp := &ast.ComponentSource{File: file.Path, Name: file.Name}

	if file.Template != nil {
		tpl, err := ParseTemplate(file.Path, file.Template)
		if err != nil {
			return nil, err
		}
		comp.Template = tpl
	}
	if file.Style != nil {
		style, err := ParseStyle(file.Path, file.Style)
		if err != nil {
			return nil, err
		}
		comp.Style = style
	}
	if file.Script != nil {
		script, err := ParseScript(file.Path, file.Script)
		if err != nil {
			return nil, err
		}
		comp.Script = script
	}
	return comp, nil
}

// stream is a buffered token cursor shared by the three parsers.
type stream struct {
	file string
	toks []token.Token
	pos  int
}

func newStream(file string, l *lexer.Lexer) (*stream, error) {
	toks, err := l.Tokens()
	if err != nil {
		return nil, err
	}
	return &stream{file: file, toks: toks}, nil
}

func (s *stream) peek() token.Token {
	return s.toks[s.pos]
}

func (s *stream) peekAt(n int) token.Token {
	if s.pos+n >= len(s.toks) {
		return s.toks[len(s.toks)-1] // EOF
	}
	return s.toks[s.pos+n]
}

func (s *stream) next() token.Token {
	tok := s.toks[s.pos]
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
	return tok
}

func (s *stream) at(kind token.Kind) bool {
	return s.peek().Kind == kind
}

// accept consumes the next token if it has the given kind.
func (s *stream) accept(kind token.Kind) (token.Token, bool) {
	if s.at(kind) {
		return s.next(), true
	}
	return token.Token{}, false
}

// expect consumes a token of the given kind or fails with a parse error
// reporting what was expected and what was found.
func (s *stream) expect(kind token.Kind) (token.Token, error) {
	if s.at(kind) {
		return s.next(), nil
	}
	return token.Token{}, s.errExpected(kind.String())
}

func (s *stream) errExpected(expected string) error {
	found := s.peek()
	return errors.New("G100").
		WithDetailf("expected %s, found %s", expected, found).
		WithLocation(s.file, found.Pos.Line, found.Pos.Column)
}
