package runtime

import (
	"fmt"
	"sync"

	"github.com/glyph-dev/glyph/internal/codegen"
	"github.com/glyph-dev/glyph/pkg/value"
)

// Instance is one mounted component. It owns exactly one model slot and one
// message queue; the slot is created on mount, replaced on each dispatch, and
// discarded on unmount. Instances share nothing with each other.
type Instance struct {
	mu       sync.Mutex
	artifact *codegen.Artifact
	ev       *evaluator
	mounted  bool

	model value.Value
	tree  []*Node

	queue    []value.Value
	draining bool

	sink func([]Patch)
}

// Mount evaluates init against the host attributes, renders the initial
// tree, and reports it to the sink as insert patches. The sink receives every
// subsequent patch batch; it must not call back into the instance.
func Mount(art *codegen.Artifact, attrs map[string]string, sink func([]Patch)) (*Instance, error) {
	if art == nil || art.Component == nil {
		return nil, fmt.Errorf("mount: nil artifact")
	}
	inst := &Instance{
		artifact: art,
		ev:       &evaluator{table: &art.Component.Table},
		sink:     sink,
		mounted:  true,
	}

	if init := art.Component.Table.Init; init >= 0 {
		var args []value.Value
		if len(art.Component.Table.Funcs[init].Params) == 1 {
			args = []value.Value{value.AttrsVal(attrs)}
		}
		model, err := inst.ev.callIndex(init, args)
		if err != nil {
			return nil, fmt.Errorf("mount %s: %w", art.Name, err)
		}
		inst.model = model
	}

	tree, err := inst.renderLocked()
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", art.Name, err)
	}
	inst.tree = tree
	inst.emit(Diff(nil, tree))
	return inst, nil
}

// Model returns the current model value.
func (inst *Instance) Model() value.Value {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.model
}

// HTML renders the current tree as markup.
func (inst *Instance) HTML() string {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	var out string
	for _, n := range inst.tree {
		out += n.HTML()
	}
	return out
}

// CSS returns the component's scoped stylesheet.
func (inst *Instance) CSS() string { return inst.artifact.CSS }

// Dispatch enqueues a message and flushes: the queue is drained strictly in
// arrival order, update runs synchronously per message, and the whole cycle
// ends in exactly one render of the final model.
func (inst *Instance) Dispatch(msg value.Value) error {
	if err := inst.Enqueue(msg); err != nil {
		return err
	}
	return inst.Flush()
}

// Enqueue appends a message without rendering. Messages enqueued before the
// next Flush are coalesced into a single render; no intermediate model is
// ever rendered, which is safe because update is pure and total.
func (inst *Instance) Enqueue(msg value.Value) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if !inst.mounted {
		return fmt.Errorf("dispatch on unmounted component %s", inst.artifact.Name)
	}
	if inst.artifact.Component.Table.Update < 0 {
		return fmt.Errorf("component %s declares no messages", inst.artifact.Name)
	}
	inst.queue = append(inst.queue, msg)
	return nil
}

// Flush drains the queue FIFO and renders once. A flush with an empty queue
// still renders, and because rendering is a pure function of the model the
// resulting patch batch is empty.
func (inst *Instance) Flush() error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if !inst.mounted {
		return fmt.Errorf("flush on unmounted component %s", inst.artifact.Name)
	}
	if inst.draining {
		return nil // the active cycle drains the rest
	}
	inst.draining = true
	defer func() { inst.draining = false }()

	update := inst.artifact.Component.Table.Update
	for len(inst.queue) > 0 {
		next := inst.queue[0]
		inst.queue = inst.queue[1:]
		model, err := inst.ev.callIndex(update, []value.Value{next, inst.model})
		if err != nil {
			return fmt.Errorf("update %s: %w", inst.artifact.Name, err)
		}
		inst.model = model
	}

	tree, err := inst.renderLocked()
	if err != nil {
		return fmt.Errorf("render %s: %w", inst.artifact.Name, err)
	}
	patches := Diff(inst.tree, tree)
	inst.tree = tree
	inst.emit(patches)
	return nil
}

// Fire dispatches the message bound to an event listener at the given tree
// path. Hosts that track listeners themselves can call Dispatch directly.
func (inst *Instance) Fire(path, event string) error {
	inst.mu.Lock()
	node := lookupNode(inst.tree, path)
	var msg *value.Value
	if node != nil {
		for _, l := range node.Listeners {
			if l.Event == event {
				m := l.Msg
				msg = &m
				break
			}
		}
	}
	inst.mu.Unlock()

	if msg == nil {
		return fmt.Errorf("no %s listener at %s", event, path)
	}
	return inst.Dispatch(*msg)
}

// Unmount discards the model slot and the rendered tree. Further dispatches
// fail.
func (inst *Instance) Unmount() {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.mounted = false
	inst.model = value.Value{}
	inst.tree = nil
	inst.queue = nil
}

func (inst *Instance) renderLocked() ([]*Node, error) {
	env := templateScope(&inst.artifact.Component.Model, inst.model)
	return inst.ev.render(&inst.artifact.Component.Plan, env)
}

func (inst *Instance) emit(patches []Patch) {
	if inst.sink != nil {
		inst.sink(patches)
	}
}

func lookupNode(tree []*Node, path string) *Node {
	if path == "" {
		return nil
	}
	var node *Node
	for _, part := range splitPath(path) {
		if part < 0 {
			return nil
		}
		if node == nil {
			if part >= len(tree) {
				return nil
			}
			node = tree[part]
			continue
		}
		if part >= len(node.Children) {
			return nil
		}
		node = node.Children[part]
	}
	return node
}

func splitPath(path string) []int {
	var parts []int
	n := 0
	valid := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c >= '0' && c <= '9':
			n = n*10 + int(c-'0')
			valid = true
		case c == '.' && valid:
			parts = append(parts, n)
			n = 0
			valid = false
		default:
			return []int{-1}
		}
	}
	if !valid {
		return []int{-1}
	}
	return append(parts, n)
}
