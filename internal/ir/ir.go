// Package ir defines the compiler's intermediate representation: flattened
// model and message schemas, lowered function bodies, and the render plan the
// code generator compiles into a rendering unit.
//
// Every node is a flat struct discriminated by a Kind field so the whole
// component IR serializes cleanly for the build cache. Constructor and field
// references are resolved to indices during lowering; the runtime never
// resolves a name against the message enum.
package ir

import "fmt"

// ModelSchema is the flattened field list of the component's Model record.
type ModelSchema struct {
	Name   string        `msgpack:"name"`
	Fields []FieldSchema `msgpack:"fields"`
}

// FieldSchema describes one Model field. Index is the field's position in the
// declaration and in every runtime record value.
type FieldSchema struct {
	Name  string `msgpack:"name"`
	Type  string `msgpack:"type"`
	Index int    `msgpack:"index"`
}

// FieldIndex returns the index of the named field, or -1.
func (s *ModelSchema) FieldIndex(name string) int {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Index
		}
	}
	return -1
}

// MsgSchema is the variant list of the component's Msg enum. Static
// components have none.
type MsgSchema struct {
	Name     string          `msgpack:"name"`
	Variants []VariantSchema `msgpack:"variants"`
}

// VariantSchema describes one Msg constructor. Payload is the display form of
// the payload type, empty for nullary variants.
type VariantSchema struct {
	Name    string `msgpack:"name"`
	Index   int    `msgpack:"index"`
	Payload string `msgpack:"payload,omitempty"`
}

// Func is a lowered script function.
type Func struct {
	Name   string   `msgpack:"name"`
	Params []string `msgpack:"params"`
	Body   *Expr    `msgpack:"body"`
}

// TransitionTable holds every lowered function plus the positions of the two
// entry points. Init is always set for a stateful component; Update is -1
// when the component declares no Msg enum.
type TransitionTable struct {
	Funcs  []*Func `msgpack:"funcs"`
	Init   int     `msgpack:"init"`
	Update int     `msgpack:"update"`
}

// ExprKind discriminates lowered expression nodes.
type ExprKind uint8

const (
	ExprInt     ExprKind = iota // integer literal (Int)
	ExprBool                    // boolean literal (Bool)
	ExprString                  // string literal (Str)
	ExprLoad                    // parameter, binding, or template field (Name)
	ExprField                   // record field read (X, Index)
	ExprUnary                   // Op applied to X
	ExprBinary                  // Op applied to X, Y
	ExprCall                    // user function call (Index into Funcs, Args)
	ExprBuiltin                 // builtin call (Name, Args)
	ExprRecord                  // record construction (Name, Fields, Base)
	ExprVariant                 // enum constructor (Name, Variant, Index, X payload)
	ExprSome                    // option wrap (X)
	ExprNone                    // absent option
	ExprMatch                   // match (X scrutinee, Arms)
)

func (k ExprKind) String() string {
	switch k {
	case ExprInt:
		return "Int"
	case ExprBool:
		return "Bool"
	case ExprString:
		return "String"
	case ExprLoad:
		return "Load"
	case ExprField:
		return "Field"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprCall:
		return "Call"
	case ExprBuiltin:
		return "Builtin"
	case ExprRecord:
		return "Record"
	case ExprVariant:
		return "Variant"
	case ExprSome:
		return "Some"
	case ExprNone:
		return "None"
	case ExprMatch:
		return "Match"
	default:
		return fmt.Sprintf("ExprKind(%d)", k)
	}
}

// Op is a unary or binary operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpConcat
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
	OpNot
	OpNeg
)

var opNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpConcat: "++",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
	OpAnd: "&&", OpOr: "||", OpNot: "!", OpNeg: "neg",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Expr is a lowered expression. Which fields are meaningful depends on Kind;
// unused fields stay zero so the struct stays cheap to serialize.
type Expr struct {
	Kind    ExprKind    `msgpack:"kind"`
	Int     int64       `msgpack:"int,omitempty"`
	Bool    bool        `msgpack:"bool,omitempty"`
	Str     string      `msgpack:"str,omitempty"`
	Name    string      `msgpack:"name,omitempty"`    // load target, builtin, record/enum type
	Variant string      `msgpack:"variant,omitempty"` // constructor name, for diagnostics
	Index   int         `msgpack:"index,omitempty"`   // field, func, or variant index
	Op      Op          `msgpack:"op,omitempty"`
	X       *Expr       `msgpack:"x,omitempty"`
	Y       *Expr       `msgpack:"y,omitempty"`
	Args    []*Expr     `msgpack:"args,omitempty"`
	Fields  []FieldInit `msgpack:"fields,omitempty"`
	Base    *Expr       `msgpack:"base,omitempty"`
	Arms    []Arm       `msgpack:"arms,omitempty"`
}

// FieldInit sets one record field during construction.
type FieldInit struct {
	Index int    `msgpack:"index"`
	Name  string `msgpack:"name"`
	Value *Expr  `msgpack:"value"`
}

// Arm pairs a lowered pattern with its result expression.
type Arm struct {
	Pat  *Pattern `msgpack:"pat"`
	Body *Expr    `msgpack:"body"`
}

// PatternKind discriminates lowered patterns.
type PatternKind uint8

const (
	PatWildcard PatternKind = iota
	PatBind                 // binds the scrutinee to Name
	PatInt
	PatBool
	PatString
	PatVariant // enum constructor at Index, payload in Sub
	PatSome    // payload in Sub
	PatNone
)

// Pattern is a lowered match pattern.
type Pattern struct {
	Kind  PatternKind `msgpack:"kind"`
	Name  string      `msgpack:"name,omitempty"` // binding or constructor name
	Index int         `msgpack:"index,omitempty"`
	Int   int64       `msgpack:"int,omitempty"`
	Bool  bool        `msgpack:"bool,omitempty"`
	Str   string      `msgpack:"str,omitempty"`
	Sub   *Pattern    `msgpack:"sub,omitempty"`
}

// PlanKind discriminates render plan nodes.
type PlanKind uint8

const (
	PlanElement PlanKind = iota // host element (Tag, Attrs, Listeners, Children)
	PlanText                    // literal text (Text)
	PlanInterp                  // text interpolation (Expr)
	PlanCond                    // boolean-gated subtree (Expr, Children)
)

func (k PlanKind) String() string {
	switch k {
	case PlanElement:
		return "Element"
	case PlanText:
		return "Text"
	case PlanInterp:
		return "Interp"
	case PlanCond:
		return "Cond"
	default:
		return fmt.Sprintf("PlanKind(%d)", k)
	}
}

// StaticAttr is an attribute whose value is fixed at compile time.
type StaticAttr struct {
	Name  string `msgpack:"name"`
	Value string `msgpack:"value"`
}

// Listener attaches an event to a message expression. Msg is evaluated in the
// template scope when the event fires; its constructor is already resolved to
// a variant index.
type Listener struct {
	Event string `msgpack:"event"`
	Msg   *Expr  `msgpack:"msg"`
}

// PlanNode is one render instruction. The plan is style- and markup-agnostic:
// it describes what to emit, not how the host platform represents it.
type PlanNode struct {
	Kind      PlanKind     `msgpack:"kind"`
	Tag       string       `msgpack:"tag,omitempty"`
	Attrs     []StaticAttr `msgpack:"attrs,omitempty"`
	Listeners []Listener   `msgpack:"listeners,omitempty"`
	Text      string       `msgpack:"text,omitempty"`
	Expr      *Expr        `msgpack:"expr,omitempty"`
	Children  []*PlanNode  `msgpack:"children,omitempty"`
}

// RenderPlan is the ordered instruction tree for one component.
type RenderPlan struct {
	Roots []*PlanNode `msgpack:"roots"`
}

// Component is the complete lowered form of one component file.
type Component struct {
	Name  string          `msgpack:"name"`
	Model ModelSchema     `msgpack:"model"`
	Msg   *MsgSchema      `msgpack:"msg,omitempty"`
	Table TransitionTable `msgpack:"table"`
	Plan  RenderPlan      `msgpack:"plan"`
}

// FuncNamed returns the lowered function with the given name, or nil.
func (c *Component) FuncNamed(name string) *Func {
	for _, f := range c.Table.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
