package submit

import (
	"strings"

	"github.com/gobwas/glob"
)

// Field identifies which semantic answer a form question is asking for.
type Field int

const (
	// FieldUnknown means the label matched no known question category.
	FieldUnknown Field = iota
	FieldName
	FieldWorkDone
	FieldDifficulties
	FieldAgenda
)

// String returns the semantic field name.
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldWorkDone:
		return "work_done"
	case FieldDifficulties:
		return "difficulties"
	case FieldAgenda:
		return "agenda"
	default:
		return "unknown"
	}
}

// LabelMatcher classifies a question's visible label text into a semantic
// field. The matching policy is isolated behind this interface because it
// is the most brittle part of browser submission: it is coupled to the
// wording of one specific form and must be swappable and testable without
// driving a browser.
type LabelMatcher interface {
	Match(label string) (Field, bool)
}

// fieldPatterns pairs a field with its compiled label patterns.
type fieldPatterns struct {
	field Field
	globs []glob.Glob
}

// GlobMatcher matches lowercased label text against glob patterns, trying
// fields in a fixed precedence order and returning the first hit.
type GlobMatcher struct {
	patterns []fieldPatterns
}

// DefaultPatterns is the keyword set the target form's questions are known
// to use, expressed as case-insensitive containment globs.
var DefaultPatterns = map[Field][]string{
	FieldName:         {"*name*", "*naam*"},
	FieldWorkDone:     {"*work done*", "*work*", "*progress*", "*today*"},
	FieldDifficulties: {"*difficult*", "*challenge*", "*problem*", "*issue*"},
	FieldAgenda:       {"*agenda*", "*tomorrow*", "*next*", "*plan*"},
}

// matchOrder fixes the precedence between categories when a label would
// match more than one.
var matchOrder = []Field{FieldName, FieldWorkDone, FieldDifficulties, FieldAgenda}

// NewGlobMatcher compiles a matcher from per-field pattern sets. Patterns
// are matched against lowercased label text. Invalid patterns are an error
// at construction time, not at match time.
func NewGlobMatcher(patterns map[Field][]string) (*GlobMatcher, error) {
	m := &GlobMatcher{}
	for _, field := range matchOrder {
		raw, ok := patterns[field]
		if !ok {
			continue
		}
		fp := fieldPatterns{field: field}
		for _, pattern := range raw {
			g, err := glob.Compile(strings.ToLower(pattern))
			if err != nil {
				return nil, err
			}
			fp.globs = append(fp.globs, g)
		}
		m.patterns = append(m.patterns, fp)
	}
	return m, nil
}

// NewDefaultMatcher compiles the default keyword set.
func NewDefaultMatcher() *GlobMatcher {
	m, err := NewGlobMatcher(DefaultPatterns)
	if err != nil {
		// DefaultPatterns is a package constant; failing to compile it is
		// a programming error.
		panic(err)
	}
	return m
}

// Match classifies a label, returning false when no category matches.
func (m *GlobMatcher) Match(label string) (Field, bool) {
	lowered := strings.ToLower(label)
	for _, fp := range m.patterns {
		for _, g := range fp.globs {
			if g.Match(lowered) {
				return fp.field, true
			}
		}
	}
	return FieldUnknown, false
}
