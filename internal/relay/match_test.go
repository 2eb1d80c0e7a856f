package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"TermFolio":         "termfolio",
		"weather-dashboard": "weatherdashboard",
		"my_cool.project":   "mycoolproject",
		"  spaced out  ":    "spacedout",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeName(in), "input %q", in)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		assert.Equal(t, 0, levenshteinDistance("termfolio", "termfolio"))
	})
	t.Run("empty against word", func(t *testing.T) {
		assert.Equal(t, 5, levenshteinDistance("", "hello"))
		assert.Equal(t, 5, levenshteinDistance("hello", ""))
	})
	t.Run("single substitution", func(t *testing.T) {
		assert.Equal(t, 1, levenshteinDistance("kitten", "mitten"))
	})
	t.Run("classic example", func(t *testing.T) {
		assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
	})
}

func TestNameSimilarity(t *testing.T) {
	t.Run("identical names score one", func(t *testing.T) {
		assert.Equal(t, 1.0, nameSimilarity("termfolio", "termfolio"))
	})
	t.Run("close misspelling clears fuzzy threshold", func(t *testing.T) {
		score := nameSimilarity("termfolio", "termfoilo")
		assert.Greater(t, score, fuzzyThreshold)
	})
	t.Run("unrelated names score low", func(t *testing.T) {
		score := nameSimilarity("termfolio", "weatherdashboard")
		assert.Less(t, score, suggestionThreshold)
	})
}

func TestWordOverlap(t *testing.T) {
	t.Run("same words any order", func(t *testing.T) {
		assert.Equal(t, 1.0, wordOverlap("weather-dashboard", "dashboard weather"))
	})
	t.Run("partial overlap", func(t *testing.T) {
		got := wordOverlap("weather-dashboard-pro", "weather thing")
		assert.Less(t, got, overlapThreshold)
	})
	t.Run("no overlap", func(t *testing.T) {
		assert.Equal(t, 0.0, wordOverlap("termfolio", "weather station"))
	})
}

func TestExtractProjectName(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"tell me about termfolio", "termfolio"},
		{"tell me about the termfolio project", "termfolio"},
		{"what is the repo called weather-dashboard?", "weather-dashboard"},
		{"have you built a project named deploy-bot", "deploy-bot"},
		{"how does the termfolio repository work", "termfolio"},
		{"tell me about that project", ""},
		{"tell me about your projects", ""},
		{"tell me about some of your work", ""},
		{"hello there", ""},
		{"what projects have you built", ""},
	}
	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			assert.Equal(t, tc.want, extractProjectName(tc.message))
		})
	}
}

func TestIsFollowUp(t *testing.T) {
	assert.True(t, isFollowUp("what tech stack does it use"))
	assert.True(t, isFollowUp("tell me more about that project"))
	assert.True(t, isFollowUp("is it open source"))
	assert.False(t, isFollowUp("what projects have you built"))
	assert.False(t, isFollowUp("hello"))
}
