package application

import (
	"fmt"

	"github.com/gobwas/glob"
)

// nameMatcher matches workflow names against a set of shell-style globs.
// Matching is case-sensitive against the whole name. Patterns are compiled
// without separators, so '*' matches any run of characters including '/'.
type nameMatcher struct {
	globs []glob.Glob
}

// newNameMatcher compiles every pattern and rejects malformed ones.
func newNameMatcher(patterns []string) (nameMatcher, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nameMatcher{}, fmt.Errorf("invalid workflow name pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return nameMatcher{globs: globs}, nil
}

// MatchAny reports whether name matches at least one pattern.
func (m nameMatcher) MatchAny(name string) bool {
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
