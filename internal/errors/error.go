package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the compilation stage (or subsystem) an error belongs to.
type Category string

const (
	CategoryLex     Category = "lex"
	CategoryParse   Category = "parse"
	CategoryType    Category = "type"
	CategoryCodegen Category = "codegen"
	CategoryConfig  Category = "config"
	CategoryBuild   Category = "build"
	CategoryDeploy  Category = "deploy"
	CategoryCLI     Category = "cli"
)

// Location represents a position in a component source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// GlyphError is a structured compiler diagnostic with source location,
// suggestions, and documentation.
type GlyphError struct {
	// Code is a unique error identifier (e.g., "G201").
	Code string

	// Category is the compilation stage that produced the error.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the source position where the error occurred.
	Location *Location

	// Context contains surrounding source code lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is source code showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *GlyphError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *GlyphError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a source location to the error and loads context lines
// from the file when it is readable.
func (e *GlyphError) WithLocation(file string, line, column int) *GlyphError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *GlyphError) WithSuggestion(s string) *GlyphError {
	e.Suggestion = s
	return e
}

// WithExample adds a source example to the error.
func (e *GlyphError) WithExample(ex string) *GlyphError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *GlyphError) WithDetail(d string) *GlyphError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *GlyphError) WithDetailf(format string, args ...any) *GlyphError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithContext adds custom context lines to the error. Used when the source
// text is in memory rather than on disk.
func (e *GlyphError) WithContext(lines []string) *GlyphError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *GlyphError) Wrap(err error) *GlyphError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a GlyphError from a registered error code.
func New(code string) *GlyphError {
	template, ok := registry[code]
	if !ok {
		return &GlyphError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &GlyphError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new GlyphError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *GlyphError {
	return &GlyphError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a GlyphError.
func FromError(err error, code string) *GlyphError {
	if err == nil {
		return nil
	}
	if ge, ok := err.(*GlyphError); ok {
		return ge
	}
	return New(code).Wrap(err)
}
