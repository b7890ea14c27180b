package codegen

import (
	"strings"

	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/errors"
)

// scopeStylesheet rewrites every selector so its rules only match elements
// carrying the component's scope marker. Each compound in the selector gets
// the marker appended, so both `.box` and the `p` inside `.box > p` stay
// inside the component's subtree. Leaking into or out of the component is
// impossible by construction: the marker exists nowhere else.
func scopeStylesheet(style *ast.Style, scope string) (string, error) {
	if style == nil || len(style.Rules) == 0 {
		return "", nil
	}

	var b strings.Builder
	for i, rule := range style.Rules {
		if len(rule.Selectors) == 0 {
			return "", errors.New("G300").WithDetail("style rule without selectors")
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, sel := range rule.Selectors {
			if j > 0 {
				b.WriteString(", ")
			}
			scoped, err := scopeSelector(sel, scope)
			if err != nil {
				return "", err
			}
			b.WriteString(scoped)
		}
		b.WriteString(" {\n")
		for _, decl := range rule.Declarations {
			b.WriteString("  ")
			b.WriteString(decl.Property)
			b.WriteString(": ")
			b.WriteString(decl.Value)
			b.WriteString(";\n")
		}
		b.WriteString("}\n")
	}
	return b.String(), nil
}

func scopeSelector(sel ast.Selector, scope string) (string, error) {
	if len(sel.Compounds) == 0 {
		return "", errors.New("G300").WithDetail("selector without compounds")
	}
	marker := "[" + scope + "]"

	var b strings.Builder
	for i, compound := range sel.Compounds {
		if i > 0 {
			switch sel.Combinators[i-1] {
			case " ", "":
				b.WriteByte(' ')
			default:
				b.WriteByte(' ')
				b.WriteString(sel.Combinators[i-1])
				b.WriteByte(' ')
			}
		}
		// The universal selector is implied by a bare attribute match.
		if compound == "*" {
			b.WriteString(marker)
			continue
		}
		b.WriteString(compound)
		b.WriteString(marker)
	}
	return b.String(), nil
}
