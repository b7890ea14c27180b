package runtime

import "strconv"

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // update text content
	PatchSetAttr     PatchOp = 0x02 // set or update an attribute
	PatchRemoveAttr  PatchOp = 0x03 // remove an attribute
	PatchInsertNode  PatchOp = 0x04 // insert a new node
	PatchRemoveNode  PatchOp = 0x05 // remove a node
	PatchReplaceNode PatchOp = 0x06 // replace a node entirely
	PatchSetEvents   PatchOp = 0x07 // rebind event listeners
)

func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	case PatchSetEvents:
		return "SetEvents"
	default:
		return "Unknown"
	}
}

// Patch is a single operation transforming the previous tree into the next.
// Path addresses the target by child index from the root, dot separated.
type Patch struct {
	Op    PatchOp
	Path  string
	Name  string // attribute key for SetAttr/RemoveAttr
	Value string // new attribute value or text content
	Node  *Node  // payload for InsertNode/ReplaceNode
}

// Diff compares two rendered trees and returns the patches that transform
// prev into next. Diffing is positional: plan shapes are static apart from
// conditionals, so sibling identity follows the index.
func Diff(prev, next []*Node) []Patch {
	var patches []Patch
	diffChildren(prev, next, "", &patches)
	return patches
}

func childPath(parent string, i int) string {
	if parent == "" {
		return strconv.Itoa(i)
	}
	return parent + "." + strconv.Itoa(i)
}

func diffChildren(prev, next []*Node, parent string, patches *[]Patch) {
	common := len(prev)
	if len(next) < common {
		common = len(next)
	}
	for i := 0; i < common; i++ {
		diffNode(prev[i], next[i], childPath(parent, i), patches)
	}
	// Remove from the end backwards so earlier paths stay valid.
	for i := len(prev) - 1; i >= common; i-- {
		*patches = append(*patches, Patch{Op: PatchRemoveNode, Path: childPath(parent, i)})
	}
	for i := common; i < len(next); i++ {
		*patches = append(*patches, Patch{Op: PatchInsertNode, Path: childPath(parent, i), Node: next[i]})
	}
}

func diffNode(prev, next *Node, path string, patches *[]Patch) {
	if prev.Kind != next.Kind || (prev.Kind == NodeElement && prev.Tag != next.Tag) {
		*patches = append(*patches, Patch{Op: PatchReplaceNode, Path: path, Node: next})
		return
	}

	if prev.Kind == NodeText {
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{Op: PatchSetText, Path: path, Value: next.Text})
		}
		return
	}

	diffAttrs(prev, next, path, patches)
	if !sameListeners(prev.Listeners, next.Listeners) {
		*patches = append(*patches, Patch{Op: PatchSetEvents, Path: path, Node: next})
	}
	diffChildren(prev.Children, next.Children, path, patches)
}

func diffAttrs(prev, next *Node, path string, patches *[]Patch) {
	prevAttrs := make(map[string]string, len(prev.Attrs))
	for _, a := range prev.Attrs {
		prevAttrs[a.Name] = a.Value
	}
	seen := make(map[string]bool, len(next.Attrs))
	for _, a := range next.Attrs {
		seen[a.Name] = true
		if old, ok := prevAttrs[a.Name]; !ok || old != a.Value {
			*patches = append(*patches, Patch{Op: PatchSetAttr, Path: path, Name: a.Name, Value: a.Value})
		}
	}
	for _, a := range prev.Attrs {
		if !seen[a.Name] {
			*patches = append(*patches, Patch{Op: PatchRemoveAttr, Path: path, Name: a.Name})
		}
	}
}
