// Package match selects upstream file names using simplified glob patterns.
//
// A pattern's '*' matches any run of characters, including none. Every other
// character is literal. Patterns are anchored at the start of the name only, so
// "app" selects every name beginning with "app" and "app-*.apk" also selects
// "app-release.apk.sha256". Existing mirror configurations rely on this prefix
// behaviour; keep it.
package match

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultPatterns selects every file.
var DefaultPatterns = []string{"*"}

// Matcher is a compiled set of patterns. A name is selected when any pattern matches.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// Compile builds a Matcher. An empty pattern set selects everything.
func Compile(patterns []string) (*Matcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	m := &Matcher{patterns: patterns, globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(prefixGlob(p))
		if err != nil {
			return nil, fmt.Errorf("invalid asset pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether name is selected.
func (m *Matcher) Match(name string) bool {
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns the Matcher was built from.
func (m *Matcher) Patterns() []string {
	return m.patterns
}

// prefixGlob quotes everything except '*' and appends a trailing '*' so the
// pattern only has to match a prefix of the name.
func prefixGlob(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = glob.QuoteMeta(part)
	}
	return strings.Join(parts, "*") + "*"
}
