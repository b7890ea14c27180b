package runtime

import (
	"strings"

	"github.com/glyph-dev/glyph/pkg/value"
)

// NodeKind is the rendered node type discriminator.
type NodeKind uint8

const (
	NodeElement NodeKind = iota
	NodeText
)

func (k NodeKind) String() string {
	switch k {
	case NodeElement:
		return "Element"
	case NodeText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Attr is one rendered attribute. Order follows the plan, so renders are
// deterministic.
type Attr struct {
	Name  string
	Value string
}

// Listener is a rendered event binding: the message value it dispatches is
// already fully evaluated, so firing the event never resolves a name.
type Listener struct {
	Event string
	Msg   value.Value
}

// Node is one rendered tree node. The tree is what Diff compares; hosts
// never see it directly, only the patches.
type Node struct {
	Kind      NodeKind
	Tag       string
	Attrs     []Attr
	Listeners []Listener
	Text      string
	Children  []*Node
}

// HTML renders the node as markup. The dev server uses it for the initial
// document; incremental updates go through patches instead.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	if n.Kind == NodeText {
		escapeText(b, n.Text)
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		if a.Value != "" {
			b.WriteString(`="`)
			escapeAttr(b, a.Value)
			b.WriteByte('"')
		}
	}
	b.WriteByte('>')
	for _, c := range n.Children {
		c.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func escapeText(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		default:
			b.WriteRune(r)
		}
	}
}

func escapeAttr(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("&quot;")
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		default:
			b.WriteRune(r)
		}
	}
}

func sameListeners(a, b []Listener) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Event != b[i].Event || !value.Equal(a[i].Msg, b[i].Msg) {
			return false
		}
	}
	return true
}
