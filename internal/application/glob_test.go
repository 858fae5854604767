package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameMatcher_MatchAny(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		input    string
		want     bool
	}{
		{"suffix glob matches", []string{"*-1"}, "workflow-1", true},
		{"suffix glob rejects sibling", []string{"*-1"}, "workflow-2", false},
		{"suffix glob anchors the end", []string{"*-1"}, "workflow-12", false},
		{"star matches names with a slash", []string{"*"}, "deploy / production", true},
		{"star matches plain names", []string{"*"}, "anything", true},
		{"prefix glob crosses a slash", []string{"deploy*"}, "deploy / production", true},
		{"empty name", []string{"*"}, "", true},
		{"question mark", []string{"test-?"}, "test-a", true},
		{"character class", []string{"lint-[ab]"}, "lint-c", false},
		{"alternation", []string{"{build,test}"}, "test", true},
		{"case sensitive", []string{"Build"}, "build", false},
		{"any of several", []string{"docs", "e2e-*"}, "e2e-chrome", true},
		{"no patterns", nil, "build", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := newNameMatcher(tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.MatchAny(tt.input))
		})
	}
}

func TestNewNameMatcher_InvalidPattern(t *testing.T) {
	_, err := newNameMatcher([]string{"ok", "[unclosed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"[unclosed"`)
}
