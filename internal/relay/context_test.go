package relay

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvaldez/termfolio/internal/provider"
)

func testRepos() []provider.Repository {
	return []provider.Repository{
		{
			Name:        "termfolio",
			Description: "Terminal-style portfolio website",
			HTMLURL:     "https://github.com/dvaldez/termfolio",
			Languages:   []string{"TypeScript", "Go"},
			Owner:       "dvaldez",
			ReadmeContent: "# termfolio\n\nA portfolio that looks like a terminal.\n\n" +
				"## Features\n\n- Interactive command prompt\n- React frontend with Tailwind styling\n- Postgres-backed contact outbox\n",
		},
		{
			Name:               "deploy-bot",
			Description:        "GitHub automation agent",
			HTMLURL:            "https://github.com/acme/deploy-bot",
			Languages:          []string{"Go"},
			Owner:              "acme",
			IsOrganizationRepo: true,
		},
		{
			Name:        "weather-dashboard",
			Description: "Live weather charts for my home town",
			HTMLURL:     "https://github.com/dvaldez/weather-dashboard",
			Languages:   []string{"JavaScript"},
			Owner:       "dvaldez",
		},
	}
}

func TestIsGeneralQuery(t *testing.T) {
	assert.True(t, isGeneralQuery("what projects have you built"))
	assert.True(t, isGeneralQuery("show me your github work"))
	assert.True(t, isGeneralQuery("which repositories are you proud of"))
	assert.False(t, isGeneralQuery("hello there"))
	assert.False(t, isGeneralQuery("what is your favourite food"))
}

func TestResolveProject(t *testing.T) {
	repos := testRepos()

	t.Run("exact extracted name", func(t *testing.T) {
		got := resolveProject("tell me about termfolio", "termfolio", repos)
		require.NotNil(t, got)
		assert.Equal(t, "termfolio", got.Name)
	})

	t.Run("name embedded in message", func(t *testing.T) {
		got := resolveProject("is deploy-bot still maintained?", "", repos)
		require.NotNil(t, got)
		assert.Equal(t, "deploy-bot", got.Name)
	})

	t.Run("misspelled name resolves fuzzily", func(t *testing.T) {
		got := resolveProject("tell me about termfoilo", "termfoilo", repos)
		require.NotNil(t, got)
		assert.Equal(t, "termfolio", got.Name)
	})

	t.Run("word overlap in any order", func(t *testing.T) {
		got := resolveProject("tell me about the dashboard weather thing", "dashboard weather", repos)
		require.NotNil(t, got)
		assert.Equal(t, "weather-dashboard", got.Name)
	})

	t.Run("description substring", func(t *testing.T) {
		got := resolveProject("did you build something about automation?", "automation", repos)
		require.NotNil(t, got)
		assert.Equal(t, "deploy-bot", got.Name)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, resolveProject("tell me about zebra-zoo", "zebra-zoo", repos))
	})

	t.Run("empty snapshot", func(t *testing.T) {
		assert.Nil(t, resolveProject("tell me about termfolio", "termfolio", nil))
	})
}

func TestSuggestFor(t *testing.T) {
	repos := testRepos()

	t.Run("close names suggested best first", func(t *testing.T) {
		got := suggestFor("termfo", repos)
		require.NotEmpty(t, got)
		assert.Equal(t, "termfolio", got[0].Name)
	})

	t.Run("nothing similar yields no suggestions", func(t *testing.T) {
		assert.Empty(t, suggestFor("xq", repos))
	})
}

func TestFormatSuggestions(t *testing.T) {
	repos := testRepos()

	t.Run("with close matches", func(t *testing.T) {
		out := formatSuggestions("termfo", repos)
		assert.Contains(t, out, `No repository matches "termfo"`)
		assert.Contains(t, out, "Closest matches:")
		assert.Contains(t, out, "termfolio")
	})

	t.Run("falls back to full name list", func(t *testing.T) {
		out := formatSuggestions("xq", repos)
		assert.Contains(t, out, "Available repositories:")
		assert.Contains(t, out, "termfolio")
		assert.Contains(t, out, "deploy-bot")
		assert.Contains(t, out, "weather-dashboard")
	})
}

func TestFormatRepoListing(t *testing.T) {
	t.Run("groups personal and organization repos", func(t *testing.T) {
		out := formatRepoListing(testRepos())
		assert.Contains(t, out, "Personal projects:")
		assert.Contains(t, out, "Organization projects:")
		assert.Contains(t, out, "termfolio")
		assert.Contains(t, out, "https://github.com/acme/deploy-bot")
		assert.Less(t, strings.Index(out, "termfolio"), strings.Index(out, "deploy-bot"))
	})

	t.Run("empty snapshot still yields guidance", func(t *testing.T) {
		out := formatRepoListing(nil)
		assert.NotEmpty(t, out)
		assert.Contains(t, out, "temporarily unavailable")
	})
}

func TestFormatProjectDetail(t *testing.T) {
	repos := testRepos()

	t.Run("includes name link and type", func(t *testing.T) {
		out := formatProjectDetail(repos[0])
		assert.Contains(t, out, "## Project: termfolio")
		assert.Contains(t, out, "https://github.com/dvaldez/termfolio")
		assert.Contains(t, out, "personal project")
	})

	t.Run("organization attribution", func(t *testing.T) {
		out := formatProjectDetail(repos[1])
		assert.Contains(t, out, "organization project (owned by acme)")
	})

	t.Run("tech stack buckets", func(t *testing.T) {
		out := formatProjectDetail(repos[0])
		assert.Contains(t, out, "Frontend: react")
		assert.Contains(t, out, "Database: postgres")
		assert.Contains(t, out, "Backend:")
	})

	t.Run("features from README section", func(t *testing.T) {
		out := formatProjectDetail(repos[0])
		assert.Contains(t, out, "Key features:")
		assert.Contains(t, out, "Interactive command prompt")
	})

	t.Run("readme preview is capped", func(t *testing.T) {
		repo := repos[0]
		repo.ReadmeContent = strings.Repeat("a", 2000)
		out := formatProjectDetail(repo)
		assert.Contains(t, out, strings.Repeat("a", readmePreviewLimit)+"...")
		assert.NotContains(t, out, strings.Repeat("a", readmePreviewLimit+1))
	})

	t.Run("readme preview cuts on rune boundaries", func(t *testing.T) {
		repo := repos[0]
		repo.ReadmeContent = strings.Repeat("é", readmePreviewLimit+100)
		out := formatProjectDetail(repo)
		assert.True(t, utf8.ValidString(out))
		assert.Contains(t, out, strings.Repeat("é", readmePreviewLimit)+"...")
	})
}

func TestExtractFeatures(t *testing.T) {
	t.Run("prefers the features section", func(t *testing.T) {
		readme := "# Title\n\n- install step\n\n## Features\n\n- first\n- second\n\n## Install\n\n- go install\n"
		got := extractFeatures(readme)
		assert.Equal(t, []string{"first", "second"}, got)
	})

	t.Run("numbered lists", func(t *testing.T) {
		readme := "## Features\n1. one\n2. two\n"
		assert.Equal(t, []string{"one", "two"}, extractFeatures(readme))
	})

	t.Run("falls back to any bullets", func(t *testing.T) {
		readme := "intro text\n- alpha\n- beta\n"
		assert.Equal(t, []string{"alpha", "beta"}, extractFeatures(readme))
	})

	t.Run("capped at five", func(t *testing.T) {
		readme := "## Features\n- a\n- b\n- c\n- d\n- e\n- f\n- g\n"
		assert.Len(t, extractFeatures(readme), maxExtractedFeatures)
	})

	t.Run("empty readme", func(t *testing.T) {
		assert.Nil(t, extractFeatures(""))
	})
}
