// Package errors provides structured, actionable diagnostics for the Glyph
// compiler.
//
// Every diagnostic carries:
//   - An exact source location (file, line, column)
//   - A plain-language message and optional detail
//   - A fix suggestion with an optional source example
//   - A documentation URL
//
// # Categories
//
// Diagnostics are organized by compilation stage:
//   - lex: unrecognized characters, unterminated literals
//   - parse: token streams that do not match the grammar
//   - type: unknown types, duplicate declarations, mismatches,
//     non-exhaustive matches, invalid entry point signatures
//   - codegen: internal consistency failures (compiler defects)
//   - config, build, cli: tooling-level failures
//
// # Codes
//
// Each diagnostic has a unique code (e.g., "G203") that maps to a registered
// template with a message, a detailed explanation, and a documentation URL.
//
// # Usage
//
//	err := errors.New("G203").
//	    WithLocation("counter.glyph", 15, 12).
//	    WithSuggestion("add an arm for None")
//
//	fmt.Println(err.Format())
//
// Type checking collects every independent diagnostic for a file into an
// errors.List before reporting, rather than stopping at the first.
package errors
