package types

import (
	"fmt"
	"strings"

	"github.com/glyph-dev/glyph/internal/ast"
)

// Exhaustiveness analysis. The scrutinee type is decomposed into its finite
// constructor set (enum variants, Some/None for options, true/false for
// bools) and the arm patterns must cover every constructor, recursively for
// nested payload patterns. This is what makes reading an option's contents
// safe: the None case cannot be left unhandled.
//
// The analysis is sound and deliberately conservative: it may reject a match
// whose refutable patterns happen to combine into full coverage (literal
// integer enumerations, for instance), but it never accepts a match with a
// reachable uncovered shape.

// missingShapes returns a description of at least one uncovered shape per
// constructor the patterns fail to cover. An empty result means the match is
// exhaustive.
func missingShapes(scrutinee *Type, pats []ast.Pattern) []string {
	if scrutinee == nil || anyIrrefutable(pats) {
		// Unknown scrutinee types already produced a diagnostic.
		return nil
	}

	switch scrutinee.Kind {
	case KindEnum:
		return missingEnumShapes(scrutinee, pats)
	case KindOption:
		return missingOptionShapes(scrutinee, pats)
	case KindBool:
		return missingBoolShapes(pats)
	default:
		// Ints, strings, records, and attrs have no finite constructor
		// set the pattern grammar can enumerate; a binding or wildcard
		// arm is required.
		return []string{"_"}
	}
}

// anyIrrefutable reports whether a pattern in the set matches every value of
// the scrutinee type.
func anyIrrefutable(pats []ast.Pattern) bool {
	for _, p := range pats {
		if isIrrefutable(p) {
			return true
		}
	}
	return false
}

func isIrrefutable(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.BindPattern:
		return true
	default:
		return false
	}
}

func missingEnumShapes(enum *Type, pats []ast.Pattern) []string {
	var missing []string
	for _, variant := range enum.Variants {
		var subPats []ast.Pattern
		covered := false
		for _, p := range pats {
			ctor, ok := p.(*ast.CtorPattern)
			if !ok || ctor.Name != variant.Name {
				continue
			}
			if variant.Payload == nil {
				covered = true
				break
			}
			if len(ctor.Args) == 1 {
				subPats = append(subPats, ctor.Args[0])
			}
		}

		switch {
		case variant.Payload == nil:
			if !covered {
				missing = append(missing, variant.Name)
			}
		case len(subPats) == 0:
			missing = append(missing, fmt.Sprintf("%s(_)", variant.Name))
		default:
			for _, sub := range missingShapes(variant.Payload, subPats) {
				missing = append(missing, fmt.Sprintf("%s(%s)", variant.Name, sub))
			}
		}
	}
	return missing
}

func missingOptionShapes(opt *Type, pats []ast.Pattern) []string {
	var missing []string

	var somePats []ast.Pattern
	someSeen := false
	noneSeen := false
	for _, p := range pats {
		ctor, ok := p.(*ast.CtorPattern)
		if !ok {
			continue
		}
		switch ctor.Name {
		case "Some":
			someSeen = true
			if len(ctor.Args) == 1 {
				somePats = append(somePats, ctor.Args[0])
			}
		case "None":
			noneSeen = true
		}
	}

	switch {
	case !someSeen:
		missing = append(missing, "Some(_)")
	case opt.Inner != nil:
		for _, sub := range missingShapes(opt.Inner, somePats) {
			missing = append(missing, fmt.Sprintf("Some(%s)", sub))
		}
	}
	if !noneSeen {
		missing = append(missing, "None")
	}
	return missing
}

func missingBoolShapes(pats []ast.Pattern) []string {
	trueSeen, falseSeen := false, false
	for _, p := range pats {
		lit, ok := p.(*ast.LiteralPattern)
		if !ok {
			continue
		}
		if b, ok := lit.Literal.(*ast.BoolLit); ok {
			if b.Value {
				trueSeen = true
			} else {
				falseSeen = true
			}
		}
	}

	var missing []string
	if !trueSeen {
		missing = append(missing, "true")
	}
	if !falseSeen {
		missing = append(missing, "false")
	}
	return missing
}

func joinShapes(shapes []string) string {
	return strings.Join(shapes, ", ")
}
