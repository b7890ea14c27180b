// Package codegen turns a lowered component into its compiled artifact: a
// render plan stamped with the component's scope marker, the scoped
// stylesheet, and the schemas the runtime dispatcher needs. The artifact is
// the unit the build cache stores and the runtime mounts.
package codegen

import (
	"fmt"
	"hash/fnv"

	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/ir"
)

// Artifact is the complete compiled output for one component.
type Artifact struct {
	Name       string        `msgpack:"name" json:"name"`
	Scope      string        `msgpack:"scope" json:"scope"`
	CSS        string        `msgpack:"css" json:"css"`
	Component  *ir.Component `msgpack:"component" json:"component"`
	SourceHash string        `msgpack:"source_hash" json:"sourceHash"`
}

// Generate compiles a lowered component plus its style tree into an artifact.
// The source text feeds the scope marker and the cache key. Inputs have
// passed type checking and lowering; a failure here is a compiler defect
// (G300), never a user error.
func Generate(comp *ir.Component, style *ast.Style, source string) (*Artifact, error) {
	if comp == nil {
		return nil, errors.New("G300").WithDetail("no component to generate")
	}

	scope := scopeMarker(comp.Name, source)
	if err := stampPlan(comp.Plan.Roots, scope); err != nil {
		return nil, err
	}

	css, err := scopeStylesheet(style, scope)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Name:       comp.Name,
		Scope:      scope,
		CSS:        css,
		Component:  comp,
		SourceHash: SourceHash(source),
	}, nil
}

// scopeMarker derives the component's unique attribute marker. Two
// components only collide if they share both name and source, in which case
// they are the same component.
func scopeMarker(name, source string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return fmt.Sprintf("data-g-%08x", h.Sum32())
}

// SourceHash is the cache key for a component source text.
func SourceHash(source string) string {
	h := fnv.New64a()
	h.Write([]byte(source))
	return fmt.Sprintf("%016x", h.Sum64())
}

// stampPlan adds the scope marker attribute to every element so the scoped
// stylesheet matches exactly the component's own subtree. It also rejects any
// plan node shape the generator has no lowering for.
func stampPlan(nodes []*ir.PlanNode, scope string) error {
	for _, n := range nodes {
		switch n.Kind {
		case ir.PlanElement:
			if n.Tag == "" {
				return errors.New("G300").WithDetail("element plan node without a tag")
			}
			if !hasAttr(n.Attrs, scope) {
				n.Attrs = append(n.Attrs, ir.StaticAttr{Name: scope})
			}
		case ir.PlanText, ir.PlanInterp, ir.PlanCond:
			// leaf or wrapper, nothing to stamp
		default:
			return errors.New("G300").
				WithDetailf("plan node kind %s has no generator", n.Kind)
		}
		if err := stampPlan(n.Children, scope); err != nil {
			return err
		}
	}
	return nil
}

func hasAttr(attrs []ir.StaticAttr, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}
