package parser

import (
	"strings"

	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/lexer"
	"github.com/glyph-dev/glyph/internal/source"
	"github.com/glyph-dev/glyph/internal/token"
)

// ParseStyle parses the style section into selector/declaration rules.
// Declaration values are kept verbatim; only selectors are structured, since
// scoping rewrites them during code generation.
func ParseStyle(file string, section *source.Section) (*ast.Style, error) {
	s, err := newStream(file, lexer.NewStyle(file, section.Source, section.Base))
	if err != nil {
		return nil, err
	}

	p := &styleParser{stream: s, src: section.Source, base: section.Base}
	style := &ast.Style{Pos: section.Base}
	for !s.at(token.EOF) {
		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		style.Rules = append(style.Rules, rule)
	}
	return style, nil
}

type styleParser struct {
	*stream
	src  string
	base token.Pos
}

// rel converts an absolute file offset to an offset within the section text.
func (p *styleParser) rel(pos token.Pos) int {
	return pos.Offset - p.base.Offset
}

func (p *styleParser) parseRule() (*ast.Rule, error) {
	rule := &ast.Rule{Pos: p.peek().Pos}

	selector, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	rule.Selectors = append(rule.Selectors, selector)
	for {
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
		next, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		rule.Selectors = append(rule.Selectors, next)
	}

	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	for !p.at(token.RBrace) {
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		rule.Declarations = append(rule.Declarations, decl)
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return rule, nil
}

// parseSelector reads one complex selector. Whitespace between tokens was
// dropped by the lexer, so adjacency is recovered from token offsets: a gap
// between compounds is the descendant combinator.
func (p *styleParser) parseSelector() (ast.Selector, error) {
	sel := ast.Selector{Pos: p.peek().Pos}

	compound, _, err := p.parseCompound()
	if err != nil {
		return sel, err
	}
	sel.Compounds = append(sel.Compounds, compound)

	for {
		switch p.peek().Kind {
		case token.Gt:
			p.next()
			next, _, err := p.parseCompound()
			if err != nil {
				return sel, err
			}
			sel.Combinators = append(sel.Combinators, ">")
			sel.Compounds = append(sel.Compounds, next)
		case token.Ident, token.Dot, token.Hash, token.Star:
			// parseCompound consumes maximal adjacent runs, so any
			// compound-starting token here sits after a gap.
			next, _, err := p.parseCompound()
			if err != nil {
				return sel, err
			}
			sel.Combinators = append(sel.Combinators, " ")
			sel.Compounds = append(sel.Compounds, next)
		default:
			return sel, nil
		}
	}
}

// parseCompound reads one compound selector: p, .box, #app, *, p.box.
// Returns the compound text and the section offset just past it.
func (p *styleParser) parseCompound() (string, int, error) {
	var b strings.Builder
	end := -1

	for {
		tok := p.peek()
		switch tok.Kind {
		case token.Star:
			if b.Len() > 0 && p.rel(tok.Pos) != end {
				return b.String(), end, nil
			}
			p.next()
			b.WriteString("*")
			end = p.rel(tok.Pos) + 1
		case token.Dot, token.Hash:
			if b.Len() > 0 && p.rel(tok.Pos) != end {
				return b.String(), end, nil
			}
			prefix := "."
			if tok.Kind == token.Hash {
				prefix = "#"
			}
			p.next()
			name, err := p.expect(token.Ident)
			if err != nil {
				return "", 0, err
			}
			b.WriteString(prefix)
			b.WriteString(name.Lexeme)
			end = p.rel(name.Pos) + len(name.Lexeme)
		case token.Ident:
			if b.Len() > 0 && p.rel(tok.Pos) != end {
				return b.String(), end, nil
			}
			p.next()
			b.WriteString(tok.Lexeme)
			end = p.rel(tok.Pos) + len(tok.Lexeme)
		default:
			if b.Len() == 0 {
				return "", 0, p.errExpected("selector")
			}
			return b.String(), end, nil
		}
	}
}

// parseDeclaration reads property: value; the value is sliced verbatim from
// the section source between the colon and the terminating ; or }.
func (p *styleParser) parseDeclaration() (*ast.Declaration, error) {
	property, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}

	start := p.rel(p.peek().Pos)
	if p.at(token.Semi) || p.at(token.RBrace) || p.at(token.EOF) {
		return nil, p.errExpected("declaration value")
	}
	for !p.at(token.Semi) && !p.at(token.RBrace) {
		if p.at(token.EOF) {
			return nil, p.errExpected("; or }")
		}
		p.next()
	}
	end := p.rel(p.peek().Pos)
	p.accept(token.Semi)

	return &ast.Declaration{
		Pos:      property.Pos,
		Property: property.Lexeme,
		Value:    strings.TrimSpace(p.src[start:end]),
	}, nil
}
