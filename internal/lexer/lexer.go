// Package lexer turns Glyph section source text into token streams.
//
// A component file has three sections with different vocabularies, so three
// lexer configurations exist: markup, style, and script. All three share one
// scanner core, track positions for diagnostics, and strip # line comments so
// they never reach a parser.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/token"
)

// Mode selects the token vocabulary.
type Mode int

const (
	ModeMarkup Mode = iota
	ModeStyle
	ModeScript
)

// Lexer produces a lazy, finite, restartable token sequence for one section.
type Lexer struct {
	mode Mode
	file string
	src  string
	base token.Pos

	pos  int // byte offset into src
	line int
	col  int

	// Markup state: inside an open tag (between < and >), attribute
	// names/values are lexed instead of raw text runs.
	inTag bool
}

// NewMarkup returns a lexer for the template section.
func NewMarkup(file, src string, base token.Pos) *Lexer {
	return newLexer(ModeMarkup, file, src, base)
}

// NewStyle returns a lexer for the style section.
func NewStyle(file, src string, base token.Pos) *Lexer {
	return newLexer(ModeStyle, file, src, base)
}

// NewScript returns a lexer for the script section.
func NewScript(file, src string, base token.Pos) *Lexer {
	return newLexer(ModeScript, file, src, base)
}

func newLexer(mode Mode, file, src string, base token.Pos) *Lexer {
	if base.Line == 0 {
		base = token.Pos{Line: 1, Column: 1}
	}
	l := &Lexer{mode: mode, file: file, src: src, base: base}
	l.Reset()
	return l
}

// Reset rewinds the lexer to the start of its section.
func (l *Lexer) Reset() {
	l.pos = 0
	l.line = l.base.Line
	l.col = l.base.Column
	l.inTag = false
}

// File returns the source file path the lexer was created with.
func (l *Lexer) File() string {
	return l.file
}

// Tokens drains the lexer and returns every remaining token, ending with EOF.
func (l *Lexer) Tokens() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

// Next returns the next token. After the section is exhausted it returns EOF
// tokens forever. An unrecognized character yields a G001 lex error.
func (l *Lexer) Next() (token.Token, error) {
	switch l.mode {
	case ModeMarkup:
		return l.nextMarkup()
	case ModeStyle:
		return l.nextStyle()
	default:
		return l.nextScript()
	}
}

// here returns the current position in file coordinates.
func (l *Lexer) here() token.Pos {
	return token.Pos{Line: l.line, Column: l.col, Offset: l.base.Offset + l.pos}
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

// advance consumes one byte and keeps line/column bookkeeping.
func (l *Lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) make(kind token.Kind, lexeme string, pos token.Pos) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Pos: pos}
}

func (l *Lexer) errUnexpected(pos token.Pos) error {
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return errors.New("G001").
		WithDetailf("character %q is not valid here", r).
		WithLocation(l.file, pos.Line, pos.Column)
}

// skipSpaceAndComments consumes whitespace and # line comments.
func (l *Lexer) skipSpaceAndComments() {
	for !l.eof() {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '#':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Script vocabulary
// ---------------------------------------------------------------------------

func (l *Lexer) nextScript() (token.Token, error) {
	l.skipSpaceAndComments()
	pos := l.here()

	if l.eof() {
		return l.make(token.EOF, "", pos), nil
	}

	ch := l.peek()
	switch {
	case isIdentStart(ch):
		lexeme := l.scanWhile(isIdentPart)
		if kind, ok := token.Keywords[lexeme]; ok {
			return l.make(kind, lexeme, pos), nil
		}
		return l.make(token.Ident, lexeme, pos), nil
	case isDigit(ch):
		lexeme := l.scanWhile(isDigit)
		return l.make(token.Int, lexeme, pos), nil
	case ch == '"':
		return l.scanString(pos)
	}

	two := l.twoByte()
	if kind, ok := twoByteScript[two]; ok {
		l.advance()
		l.advance()
		return l.make(kind, two, pos), nil
	}
	if kind, ok := oneByteScript[ch]; ok {
		l.advance()
		return l.make(kind, string(ch), pos), nil
	}
	return token.Token{}, l.errUnexpected(pos)
}

var twoByteScript = map[string]token.Kind{
	"=>": token.Arrow,
	"==": token.Eq,
	"!=": token.NotEq,
	"<=": token.LtEq,
	">=": token.GtEq,
	"&&": token.And,
	"||": token.Or,
	"..": token.DotDot,
}

var oneByteScript = map[byte]token.Kind{
	'{': token.LBrace,
	'}': token.RBrace,
	'(': token.LParen,
	')': token.RParen,
	':': token.Colon,
	',': token.Comma,
	'.': token.Dot,
	'=': token.Assign,
	'|': token.Pipe,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'!': token.Bang,
	'<': token.Lt,
	'>': token.Gt,
}

func (l *Lexer) twoByte() string {
	if l.pos+2 > len(l.src) {
		return ""
	}
	return l.src[l.pos : l.pos+2]
}

func (l *Lexer) scanWhile(pred func(byte) bool) string {
	start := l.pos
	for !l.eof() && pred(l.peek()) {
		l.advance()
	}
	return l.src[start:l.pos]
}

func (l *Lexer) scanString(pos token.Pos) (token.Token, error) {
	l.advance() // opening quote
	start := l.pos
	for {
		if l.eof() || l.peek() == '\n' {
			return token.Token{}, errors.New("G002").
				WithLocation(l.file, pos.Line, pos.Column)
		}
		if l.peek() == '"' {
			lexeme := l.src[start:l.pos]
			l.advance() // closing quote
			return l.make(token.String, lexeme, pos), nil
		}
		l.advance()
	}
}

// ---------------------------------------------------------------------------
// Markup vocabulary
// ---------------------------------------------------------------------------

func (l *Lexer) nextMarkup() (token.Token, error) {
	if l.inTag {
		return l.nextMarkupTag()
	}

	pos := l.here()
	if l.eof() {
		return l.make(token.EOF, "", pos), nil
	}

	switch l.peek() {
	case '<':
		if l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			l.inTag = true
			return l.make(token.TagEndOpen, "</", pos), nil
		}
		l.advance()
		l.inTag = true
		return l.make(token.TagOpen, "<", pos), nil
	case '{':
		return l.scanInterpolation(pos)
	case '#':
		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}
		if !l.eof() {
			l.advance()
		}
		return l.nextMarkup()
	}

	// Raw text run until tag, interpolation, or comment.
	start := l.pos
	for !l.eof() {
		ch := l.peek()
		if ch == '<' || ch == '{' || ch == '#' {
			break
		}
		l.advance()
	}
	return l.make(token.Text, l.src[start:l.pos], pos), nil
}

// scanInterpolation emits one Text token holding the raw expression source
// between braces. The template parser re-lexes it with the script vocabulary.
func (l *Lexer) scanInterpolation(pos token.Pos) (token.Token, error) {
	l.advance() // {
	start := l.pos
	exprPos := l.here()
	depth := 1
	for {
		if l.eof() {
			return token.Token{}, errors.New("G003").
				WithLocation(l.file, pos.Line, pos.Column)
		}
		ch := l.peek()
		switch ch {
		case '"':
			if _, err := l.scanString(l.here()); err != nil {
				return token.Token{}, err
			}
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				lexeme := l.src[start:l.pos]
				l.advance() // }
				return token.Token{Kind: token.LBrace, Lexeme: lexeme, Pos: exprPos}, nil
			}
		}
		l.advance()
	}
}

func (l *Lexer) nextMarkupTag() (token.Token, error) {
	l.skipSpaceAndComments()
	pos := l.here()

	if l.eof() {
		return l.make(token.EOF, "", pos), nil
	}

	ch := l.peek()
	switch {
	case ch == '>':
		l.advance()
		l.inTag = false
		return l.make(token.TagClose, ">", pos), nil
	case ch == '/' && l.peekAt(1) == '>':
		l.advance()
		l.advance()
		l.inTag = false
		return l.make(token.TagSelfClose, "/>", pos), nil
	case ch == '=':
		l.advance()
		return l.make(token.Assign, "=", pos), nil
	case ch == '"':
		return l.scanString(pos)
	case isMarkupNameStart(ch):
		lexeme := l.scanWhile(isMarkupNamePart)
		return l.make(token.Ident, lexeme, pos), nil
	}
	return token.Token{}, l.errUnexpected(pos)
}

// ---------------------------------------------------------------------------
// Style vocabulary
// ---------------------------------------------------------------------------

func (l *Lexer) nextStyle() (token.Token, error) {
	l.skipSpaceAndStyleComments()
	pos := l.here()

	if l.eof() {
		return l.make(token.EOF, "", pos), nil
	}

	ch := l.peek()
	switch {
	case ch == '{':
		l.advance()
		return l.make(token.LBrace, "{", pos), nil
	case ch == '}':
		l.advance()
		return l.make(token.RBrace, "}", pos), nil
	case ch == ':':
		l.advance()
		return l.make(token.Colon, ":", pos), nil
	case ch == ';':
		l.advance()
		return l.make(token.Semi, ";", pos), nil
	case ch == ',':
		l.advance()
		return l.make(token.Comma, ",", pos), nil
	case ch == '.':
		l.advance()
		return l.make(token.Dot, ".", pos), nil
	case ch == '*':
		l.advance()
		return l.make(token.Star, "*", pos), nil
	case ch == '>':
		l.advance()
		return l.make(token.Gt, ">", pos), nil
	case ch == '"':
		return l.scanString(pos)
	case isStyleNameStart(ch):
		lexeme := l.scanWhile(isStyleNamePart)
		return l.make(token.Ident, lexeme, pos), nil
	case isDigit(ch):
		lexeme := l.scanWhile(isStyleValuePart)
		return l.make(token.Int, lexeme, pos), nil
	case ch == '#':
		l.advance()
		return l.make(token.Hash, "#", pos), nil
	case isStyleValuePart(ch):
		lexeme := l.scanWhile(isStyleValuePart)
		return l.make(token.Text, lexeme, pos), nil
	}
	return token.Token{}, l.errUnexpected(pos)
}

// skipSpaceAndStyleComments is the style-mode variant of comment stripping.
// Hex colors and ID selectors need # followed by a name, so a # is a comment
// only when followed by whitespace or end of input.
func (l *Lexer) skipSpaceAndStyleComments() {
	for !l.eof() {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '#' && isSpaceByte(l.peekAt(1)):
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isSpaceByte(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == 0
}

// ---------------------------------------------------------------------------
// Character classes
// ---------------------------------------------------------------------------

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// Markup names allow dashes: tag names, show-if, on-click.
func isMarkupNameStart(ch byte) bool {
	return isIdentStart(ch)
}

func isMarkupNamePart(ch byte) bool {
	return isIdentPart(ch) || ch == '-'
}

// Style names allow dashes and leading dashes (custom properties).
func isStyleNameStart(ch byte) bool {
	return isIdentStart(ch) || ch == '-'
}

func isStyleNamePart(ch byte) bool {
	return isIdentPart(ch) || ch == '-'
}

// Style declaration values admit units and punctuation like 1.5rem, 100%, url paths.
func isStyleValuePart(ch byte) bool {
	return isIdentPart(ch) || strings.IndexByte("-%./()", ch) >= 0
}
