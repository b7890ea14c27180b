package errors

import (
	"sort"
	"strings"
)

// List collects independent diagnostics for one compilation unit. The type
// checker reports every error it finds rather than stopping at the first, so
// callers receive the whole list at once.
type List []*GlyphError

// Add appends a diagnostic.
func (l *List) Add(e *GlyphError) {
	if e != nil {
		*l = append(*l, e)
	}
}

// Addf appends a diagnostic built from a registered code with a detail message.
func (l *List) Addf(code string, format string, args ...any) *GlyphError {
	e := New(code).WithDetailf(format, args...)
	*l = append(*l, e)
	return e
}

// HasErrors reports whether any diagnostics were collected.
func (l List) HasErrors() bool {
	return len(l) > 0
}

// Err returns the list as an error, or nil if it is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Error implements the error interface with one compact line per diagnostic.
func (l List) Error() string {
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.FormatCompact())
	}
	return b.String()
}

// Sort orders diagnostics by file, line, then column. Diagnostics without a
// location sort last in insertion order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Location, l[j].Location
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case a.File != b.File:
			return a.File < b.File
		case a.Line != b.Line:
			return a.Line < b.Line
		default:
			return a.Column < b.Column
		}
	})
}

// Format returns the full multi-line rendering of every diagnostic.
func (l List) Format() string {
	var b strings.Builder
	for _, e := range l {
		b.WriteString(e.Format())
	}
	return b.String()
}
