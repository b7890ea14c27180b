package parser

import (
	"strings"

	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/lexer"
	"github.com/glyph-dev/glyph/internal/source"
	"github.com/glyph-dev/glyph/internal/token"
)

// Control attribute vocabulary. Everything else passes through verbatim as
// static markup.
const (
	attrShowIf      = "show-if"
	eventAttrPrefix = "on-"
)

// ParseTemplate parses the markup section into a template tree.
func ParseTemplate(file string, section *source.Section) (*ast.Template, error) {
	s, err := newStream(file, lexer.NewMarkup(file, section.Source, section.Base))
	if err != nil {
		return nil, err
	}

	children, err := parseTemplateNodes(s, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(token.EOF); err != nil {
		return nil, err
	}
	return &ast.Template{Pos: section.Base, Children: children}, nil
}

// parseTemplateNodes parses sibling nodes until the enclosing element's end
// tag (or end of section at the top level).
func parseTemplateNodes(s *stream, enclosingTag string) ([]ast.TemplateNode, error) {
	var nodes []ast.TemplateNode
	for {
		tok := s.peek()
		switch tok.Kind {
		case token.EOF:
			if enclosingTag != "" {
				return nil, errors.New("G101").
					WithDetailf("missing </%s>", enclosingTag).
					WithLocation(s.file, tok.Pos.Line, tok.Pos.Column)
			}
			return nodes, nil
		case token.TagEndOpen:
			return nodes, nil
		case token.Text:
			s.next()
			if strings.TrimSpace(tok.Lexeme) != "" {
				nodes = append(nodes, &ast.Text{Pos: tok.Pos, Value: tok.Lexeme})
			}
		case token.LBrace:
			s.next()
			expr, err := ParseExpr(s.file, tok.Lexeme, tok.Pos)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &ast.Interp{Pos: tok.Pos, Expr: expr})
		case token.TagOpen:
			node, err := parseElement(s)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		default:
			return nil, s.errExpected("markup")
		}
	}
}

// parseElement parses one element. A show-if attribute lifts the element into
// a ConditionalShow wrapper; on-* attributes become event bindings.
func parseElement(s *stream) (ast.TemplateNode, error) {
	open := s.next() // <
	name, err := s.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	el := &ast.Element{Pos: open.Pos, Tag: name.Lexeme}
	var showIf ast.Expr
	var showIfPos token.Pos

	for s.at(token.Ident) {
		attrName := s.next()
		value := ""
		var valueTok token.Token
		hasValue := false
		if _, ok := s.accept(token.Assign); ok {
			valueTok, err = s.expect(token.String)
			if err != nil {
				return nil, err
			}
			value = valueTok.Lexeme
			hasValue = true
		}

		switch {
		case attrName.Lexeme == attrShowIf:
			if !hasValue {
				return nil, s.errExpected("show-if expression")
			}
			cond, err := ParseExpr(s.file, value, exprBase(valueTok))
			if err != nil {
				return nil, err
			}
			showIf = cond
			showIfPos = attrName.Pos
		case strings.HasPrefix(attrName.Lexeme, eventAttrPrefix) && len(attrName.Lexeme) > len(eventAttrPrefix):
			if !hasValue {
				return nil, s.errExpected("message constructor")
			}
			ctor, err := ParseExpr(s.file, value, exprBase(valueTok))
			if err != nil {
				return nil, err
			}
			el.Events = append(el.Events, &ast.EventBinding{
				Pos:   attrName.Pos,
				Event: strings.TrimPrefix(attrName.Lexeme, eventAttrPrefix),
				Ctor:  ctor,
			})
		default:
			el.Attrs = append(el.Attrs, ast.Attr{
				Pos:   attrName.Pos,
				Name:  attrName.Lexeme,
				Value: value,
			})
		}
	}

	if _, ok := s.accept(token.TagSelfClose); !ok {
		if _, err := s.expect(token.TagClose); err != nil {
			return nil, err
		}
		children, err := parseTemplateNodes(s, el.Tag)
		if err != nil {
			return nil, err
		}
		el.Children = children

		if _, err := s.expect(token.TagEndOpen); err != nil {
			return nil, err
		}
		closeName, err := s.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if closeName.Lexeme != el.Tag {
			return nil, errors.New("G104").
				WithDetailf("found </%s>, expected </%s>", closeName.Lexeme, el.Tag).
				WithLocation(s.file, closeName.Pos.Line, closeName.Pos.Column)
		}
		if _, err := s.expect(token.TagClose); err != nil {
			return nil, err
		}
	}

	if showIf != nil {
		return &ast.ConditionalShow{
			Pos:      showIfPos,
			Cond:     showIf,
			Children: []ast.TemplateNode{el},
		}, nil
	}
	return el, nil
}

// exprBase positions an attribute value expression just inside its quotes.
func exprBase(valueTok token.Token) token.Pos {
	return token.Pos{
		Line:   valueTok.Pos.Line,
		Column: valueTok.Pos.Column + 1,
		Offset: valueTok.Pos.Offset + 1,
	}
}
