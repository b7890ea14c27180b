// Package source splits a raw Glyph component file into its template, style,
// and script sections, preserving file positions so later diagnostics point
// at the original file.
package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/token"
)

// Ext is the component file extension.
const Ext = ".glyph"

// Section is one tagged block of a component file.
type Section struct {
	Tag    string // "template", "style", "script"
	Source string // inner text, tags excluded
	Base   token.Pos
}

// File is a component file split into sections. Any section may be nil; a
// component with no script is static markup.
type File struct {
	Path     string
	Name     string // component name derived from the file name
	Content  string // the full source text
	Template *Section
	Style    *Section
	Script   *Section
}

var sectionTags = []string{"template", "style", "script"}

// Load reads and splits a component file from disk.
func Load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Newf(errors.CategoryBuild, "read %s: %v", path, err)
	}
	return Split(path, string(content))
}

// Split parses the top level of a component file. Only <template>, <style>
// and <script> blocks (plus whitespace and # comments) may appear; each tag
// may appear at most once.
func Split(path, content string) (*File, error) {
	name := strings.TrimSuffix(filepath.Base(path), Ext)
	file := &File{Path: path, Name: name, Content: content}

	pos := 0
	line, col := 1, 1
	advance := func(n int) {
		for i := 0; i < n; i++ {
			if content[pos+i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		pos += n
	}

	for pos < len(content) {
		ch := content[pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			advance(1)
		case ch == '#':
			for pos < len(content) && content[pos] != '\n' {
				advance(1)
			}
		case ch == '<':
			tag := matchSectionTag(content[pos:])
			if tag == "" {
				return nil, errors.New("G103").WithLocation(path, line, col)
			}
			open := "<" + tag + ">"
			closing := "</" + tag + ">"
			advance(len(open))
			base := token.Pos{Line: line, Column: col, Offset: pos}

			end := findSectionEnd(content[pos:], open, closing)
			if end < 0 {
				return nil, errors.New("G101").
					WithDetailf("missing %s", closing).
					WithLocation(path, base.Line, base.Column)
			}
			section := &Section{Tag: tag, Source: content[pos : pos+end], Base: base}
			if err := file.attach(section, path, base); err != nil {
				return nil, err
			}
			advance(end + len(closing))
		default:
			return nil, errors.New("G103").WithLocation(path, line, col)
		}
	}

	return file, nil
}

// matchSectionTag reports which section tag opens at the start of rest, or ""
// if none does.
func matchSectionTag(rest string) string {
	for _, tag := range sectionTags {
		if strings.HasPrefix(rest, "<"+tag+">") {
			return tag
		}
	}
	return ""
}

// findSectionEnd returns the offset of the matching closing tag, honoring
// nested same-name open tags the way the template block may nest markup.
func findSectionEnd(rest, open, closing string) int {
	depth := 1
	offset := 0
	for {
		nextOpen := strings.Index(rest[offset:], open)
		nextClose := strings.Index(rest[offset:], closing)
		if nextClose < 0 {
			return -1
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			offset += nextOpen + len(open)
			continue
		}
		depth--
		if depth == 0 {
			return offset + nextClose
		}
		offset += nextClose + len(closing)
	}
}

func (f *File) attach(s *Section, path string, base token.Pos) error {
	var slot **Section
	switch s.Tag {
	case "template":
		slot = &f.Template
	case "style":
		slot = &f.Style
	case "script":
		slot = &f.Script
	}
	if *slot != nil {
		return errors.New("G102").
			WithDetailf("second <%s> block", s.Tag).
			WithLocation(path, base.Line, base.Column)
	}
	*slot = s
	return nil
}
