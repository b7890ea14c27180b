package parser

import (
	"strconv"
	"unicode"

	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/lexer"
	"github.com/glyph-dev/glyph/internal/source"
	"github.com/glyph-dev/glyph/internal/token"
)

// ParseScript parses the script section: an ordered sequence of type, enum,
// and fn declarations.
func ParseScript(file string, section *source.Section) (*ast.Script, error) {
	s, err := newStream(file, lexer.NewScript(file, section.Source, section.Base))
	if err != nil {
		return nil, err
	}

	script := &ast.Script{Pos: section.Base}
	for !s.at(token.EOF) {
		decl, err := parseDecl(s)
		if err != nil {
			return nil, err
		}
		script.Decls = append(script.Decls, decl)
	}
	return script, nil
}

// ParseExpr parses a standalone expression, as embedded in template
// interpolations and control attributes.
func ParseExpr(file, src string, base token.Pos) (ast.Expr, error) {
	s, err := newStream(file, lexer.NewScript(file, src, base))
	if err != nil {
		return nil, err
	}
	expr, err := parseExpr(s)
	if err != nil {
		return nil, err
	}
	if !s.at(token.EOF) {
		return nil, s.errExpected("end of expression")
	}
	return expr, nil
}

func parseDecl(s *stream) (ast.Decl, error) {
	switch s.peek().Kind {
	case token.KwType:
		return parseTypeDecl(s)
	case token.KwEnum:
		return parseEnumDecl(s)
	case token.KwFn:
		return parseFnDecl(s)
	default:
		return nil, s.errExpected("type, enum or fn declaration")
	}
}

// type Name = { field: Type, ... }
func parseTypeDecl(s *stream) (*ast.TypeDecl, error) {
	kw := s.next()
	name, err := s.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(token.Assign); err != nil {
		return nil, err
	}
	if _, err := s.expect(token.LBrace); err != nil {
		return nil, err
	}

	decl := &ast.TypeDecl{Pos: kw.Pos, Name: name.Lexeme}
	for !s.at(token.RBrace) {
		fieldName, err := s.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(token.Colon); err != nil {
			return nil, err
		}
		fieldType, err := parseTypeRef(s)
		if err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, &ast.FieldDecl{
			Pos:  fieldName.Pos,
			Name: fieldName.Lexeme,
			Type: fieldType,
		})
		if _, ok := s.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := s.expect(token.RBrace); err != nil {
		return nil, err
	}
	return decl, nil
}

// enum Name = { A | B(T) }
func parseEnumDecl(s *stream) (*ast.EnumDecl, error) {
	kw := s.next()
	name, err := s.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(token.Assign); err != nil {
		return nil, err
	}
	if _, err := s.expect(token.LBrace); err != nil {
		return nil, err
	}

	decl := &ast.EnumDecl{Pos: kw.Pos, Name: name.Lexeme}
	for {
		variantName, err := s.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		variant := &ast.VariantDecl{Pos: variantName.Pos, Name: variantName.Lexeme}
		if _, ok := s.accept(token.LParen); ok {
			payload, err := parseTypeRef(s)
			if err != nil {
				return nil, err
			}
			variant.Payload = payload
			if _, err := s.expect(token.RParen); err != nil {
				return nil, err
			}
		}
		decl.Variants = append(decl.Variants, variant)

		if _, ok := s.accept(token.Pipe); ok {
			continue
		}
		break
	}
	if _, err := s.expect(token.RBrace); err != nil {
		return nil, err
	}
	return decl, nil
}

// fn name(params): Type { expr }
func parseFnDecl(s *stream) (*ast.FunctionDecl, error) {
	kw := s.next()
	name, err := s.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(token.LParen); err != nil {
		return nil, err
	}

	decl := &ast.FunctionDecl{Pos: kw.Pos, Name: name.Lexeme}
	for !s.at(token.RParen) {
		paramName, err := s.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(token.Colon); err != nil {
			return nil, err
		}
		paramType, err := parseTypeRef(s)
		if err != nil {
			return nil, err
		}
		decl.Params = append(decl.Params, &ast.Param{
			Pos:  paramName.Pos,
			Name: paramName.Lexeme,
			Type: paramType,
		})
		if _, ok := s.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := s.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, err := s.expect(token.Colon); err != nil {
		return nil, err
	}
	result, err := parseTypeRef(s)
	if err != nil {
		return nil, err
	}
	decl.Result = result

	if _, err := s.expect(token.LBrace); err != nil {
		return nil, err
	}
	body, err := parseExpr(s)
	if err != nil {
		return nil, err
	}
	decl.Body = body
	if _, err := s.expect(token.RBrace); err != nil {
		return nil, err
	}
	return decl, nil
}

// Maybe<T> or a named type.
func parseTypeRef(s *stream) (ast.TypeRef, error) {
	name, err := s.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if name.Lexeme == "Maybe" {
		if _, err := s.expect(token.Lt); err != nil {
			return nil, err
		}
		inner, err := parseTypeRef(s)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(token.Gt); err != nil {
			return nil, err
		}
		return &ast.MaybeRef{Pos: name.Pos, Inner: inner}, nil
	}
	return &ast.NamedRef{Pos: name.Pos, Name: name.Lexeme}, nil
}

// ---------------------------------------------------------------------------
// Expressions: precedence climbing
// ---------------------------------------------------------------------------

// binaryPrecedence orders the operators; higher binds tighter.
var binaryPrecedence = map[token.Kind]int{
	token.Or:    1,
	token.And:   2,
	token.Eq:    3,
	token.NotEq: 3,
	token.Lt:    4,
	token.Gt:    4,
	token.LtEq:  4,
	token.GtEq:  4,
	token.Plus:  5,
	token.Minus: 5,
	token.Star:  6,
	token.Slash: 6,
}

func parseExpr(s *stream) (ast.Expr, error) {
	return parseBinary(s, 1)
}

func parseBinary(s *stream, minPrec int) (ast.Expr, error) {
	left, err := parseUnary(s)
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := binaryPrecedence[s.peek().Kind]
		if !ok || prec < minPrec {
			return left, nil
		}
		op := s.next()
		right, err := parseBinary(s, prec+1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: op.Pos, Op: op.Kind, Left: left, Right: right}
	}
}

func parseUnary(s *stream) (ast.Expr, error) {
	if s.at(token.Bang) || s.at(token.Minus) {
		op := s.next()
		operand, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Pos: op.Pos, Op: op.Kind, Operand: operand}, nil
	}
	return parsePostfix(s)
}

func parsePostfix(s *stream) (ast.Expr, error) {
	expr, err := parsePrimary(s)
	if err != nil {
		return nil, err
	}
	for s.at(token.Dot) {
		dot := s.next()
		field, err := s.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		expr = &ast.FieldAccess{Pos: dot.Pos, Target: expr, Field: field.Lexeme}
	}
	return expr, nil
}

func parsePrimary(s *stream) (ast.Expr, error) {
	tok := s.peek()
	switch tok.Kind {
	case token.Int:
		s.next()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, s.errExpected("integer literal")
		}
		return &ast.IntLit{Pos: tok.Pos, Value: value}, nil
	case token.String:
		s.next()
		return &ast.StringLit{Pos: tok.Pos, Value: tok.Lexeme}, nil
	case token.KwTrue:
		s.next()
		return &ast.BoolLit{Pos: tok.Pos, Value: true}, nil
	case token.KwFalse:
		s.next()
		return &ast.BoolLit{Pos: tok.Pos, Value: false}, nil
	case token.KwMatch:
		return parseMatch(s)
	case token.LParen:
		s.next()
		expr, err := parseExpr(s)
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(token.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	case token.Ident:
		s.next()
		if s.at(token.LParen) {
			return parseCallOrRecord(s, tok)
		}
		return &ast.Ref{Pos: tok.Pos, Name: tok.Lexeme}, nil
	default:
		return nil, s.errExpected("expression")
	}
}

// parseCallOrRecord disambiguates helper(x) from Model(count: 0, ..base)
// by looking for a field: value entry or a ..base spread after the paren.
func parseCallOrRecord(s *stream, callee token.Token) (ast.Expr, error) {
	s.next() // (

	isRecord := s.at(token.DotDot) ||
		(s.at(token.Ident) && s.peekAt(1).Kind == token.Colon)

	if isRecord {
		lit := &ast.RecordLit{Pos: callee.Pos, TypeName: callee.Lexeme}
		for !s.at(token.RParen) {
			if _, ok := s.accept(token.DotDot); ok {
				base, err := parseExpr(s)
				if err != nil {
					return nil, err
				}
				lit.Base = base
				break // ..base must be the final entry
			}
			fieldName, err := s.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			if _, err := s.expect(token.Colon); err != nil {
				return nil, err
			}
			value, err := parseExpr(s)
			if err != nil {
				return nil, err
			}
			lit.Fields = append(lit.Fields, &ast.FieldInit{
				Pos:   fieldName.Pos,
				Name:  fieldName.Lexeme,
				Value: value,
			})
			if _, ok := s.accept(token.Comma); !ok {
				break
			}
		}
		if _, err := s.expect(token.RParen); err != nil {
			return nil, err
		}
		return lit, nil
	}

	call := &ast.Call{Pos: callee.Pos, Callee: callee.Lexeme}
	for !s.at(token.RParen) {
		arg, err := parseExpr(s)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if _, ok := s.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := s.expect(token.RParen); err != nil {
		return nil, err
	}
	return call, nil
}

// match expr { pattern => expr, ... }
func parseMatch(s *stream) (ast.Expr, error) {
	kw := s.next()
	scrutinee, err := parseExpr(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(token.LBrace); err != nil {
		return nil, err
	}

	m := &ast.Match{Pos: kw.Pos, Scrutinee: scrutinee}
	for !s.at(token.RBrace) {
		pattern, err := parsePattern(s)
		if err != nil {
			return nil, err
		}
		arrow, err := s.expect(token.Arrow)
		if err != nil {
			return nil, err
		}
		body, err := parseExpr(s)
		if err != nil {
			return nil, err
		}
		m.Arms = append(m.Arms, &ast.MatchArm{Pos: arrow.Pos, Pattern: pattern, Body: body})
		if _, ok := s.accept(token.Comma); !ok {
			break
		}
	}
	if _, err := s.expect(token.RBrace); err != nil {
		return nil, err
	}
	if len(m.Arms) == 0 {
		return nil, s.errExpected("at least one match arm")
	}
	return m, nil
}

func parsePattern(s *stream) (ast.Pattern, error) {
	tok := s.peek()
	switch tok.Kind {
	case token.Int:
		s.next()
		value, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return &ast.LiteralPattern{Pos: tok.Pos, Literal: &ast.IntLit{Pos: tok.Pos, Value: value}}, nil
	case token.String:
		s.next()
		return &ast.LiteralPattern{Pos: tok.Pos, Literal: &ast.StringLit{Pos: tok.Pos, Value: tok.Lexeme}}, nil
	case token.KwTrue:
		s.next()
		return &ast.LiteralPattern{Pos: tok.Pos, Literal: &ast.BoolLit{Pos: tok.Pos, Value: true}}, nil
	case token.KwFalse:
		s.next()
		return &ast.LiteralPattern{Pos: tok.Pos, Literal: &ast.BoolLit{Pos: tok.Pos, Value: false}}, nil
	case token.Ident:
		s.next()
		if tok.Lexeme == "_" {
			return &ast.WildcardPattern{Pos: tok.Pos}, nil
		}
		if s.at(token.LParen) {
			s.next()
			ctor := &ast.CtorPattern{Pos: tok.Pos, Name: tok.Lexeme}
			for !s.at(token.RParen) {
				sub, err := parsePattern(s)
				if err != nil {
					return nil, err
				}
				ctor.Args = append(ctor.Args, sub)
				if _, ok := s.accept(token.Comma); !ok {
					break
				}
			}
			if _, err := s.expect(token.RParen); err != nil {
				return nil, err
			}
			return ctor, nil
		}
		// Capitalized bare names are nullary constructors (None, Increment);
		// lowercase names bind the matched value.
		if isUpper(tok.Lexeme) {
			return &ast.CtorPattern{Pos: tok.Pos, Name: tok.Lexeme}, nil
		}
		return &ast.BindPattern{Pos: tok.Pos, Name: tok.Lexeme}, nil
	default:
		return nil, s.errExpected("pattern")
	}
}

func isUpper(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
