// Package token defines the lexical token kinds for the three section
// vocabularies of a Glyph component file: markup, style, and script.
package token

import "fmt"

// Pos is a position in a component source file. Line and Column are 1-based;
// Offset is the byte offset from the start of the file.
type Pos struct {
	Line   int
	Column int
	Offset int
}

// String returns the position as "line:column".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Kind identifies a token type.
type Kind int

const (
	Illegal Kind = iota
	EOF

	// Shared literals and names
	Ident  // count, Model, show-if, div
	Int    // 42
	String // "hello"
	Text   // raw text run (markup), raw value run (style)

	// Shared punctuation
	LBrace // {
	RBrace // }
	LParen // (
	RParen // )
	Colon  // :
	Comma  // ,
	Dot    // .
	DotDot // ..

	// Script operators
	Assign   // =
	Arrow    // =>
	Pipe     // |
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Bang     // !
	Eq       // ==
	NotEq    // !=
	Lt       // <
	Gt       // >
	LtEq     // <=
	GtEq     // >=
	And      // &&
	Or       // ||

	// Script keywords
	KwType  // type
	KwEnum  // enum
	KwFn    // fn
	KwMatch // match
	KwTrue  // true
	KwFalse // false

	// Markup structure
	TagOpen      // <
	TagEndOpen   // </
	TagClose     // >
	TagSelfClose // />

	// Style punctuation
	Semi // ;
	Hash // #
)

var kindNames = map[Kind]string{
	Illegal:      "illegal",
	EOF:          "end of file",
	Ident:        "identifier",
	Int:          "integer",
	String:       "string",
	Text:         "text",
	LBrace:       "{",
	RBrace:       "}",
	LParen:       "(",
	RParen:       ")",
	Colon:        ":",
	Comma:        ",",
	Dot:          ".",
	DotDot:       "..",
	Assign:       "=",
	Arrow:        "=>",
	Pipe:         "|",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Bang:         "!",
	Eq:           "==",
	NotEq:        "!=",
	Lt:           "<",
	Gt:           ">",
	LtEq:         "<=",
	GtEq:         ">=",
	And:          "&&",
	Or:           "||",
	KwType:       "type",
	KwEnum:       "enum",
	KwFn:         "fn",
	KwMatch:      "match",
	KwTrue:       "true",
	KwFalse:      "false",
	TagOpen:      "<",
	TagEndOpen:   "</",
	TagClose:     ">",
	TagSelfClose: "/>",
	Semi:         ";",
	Hash:         "#",
}

// String returns a human-readable name for the kind, used in diagnostics.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Keywords maps script keyword lexemes to their kinds.
var Keywords = map[string]Kind{
	"type":  KwType,
	"enum":  KwEnum,
	"fn":    KwFn,
	"match": KwMatch,
	"true":  KwTrue,
	"false": KwFalse,
}

// Token is a single lexeme with its kind and source position.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Pos
}

// Is reports whether the token has the given kind.
func (t Token) Is(kind Kind) bool {
	return t.Kind == kind
}

// String renders the token for diagnostics: the kind name, plus the lexeme
// when it adds information.
func (t Token) String() string {
	switch t.Kind {
	case Ident, Int, String, Text, Illegal:
		return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
	default:
		return t.Kind.String()
	}
}
