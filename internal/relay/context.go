package relay

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dvaldez/termfolio/internal/provider"
)

// numberedLine matches "1. item" style README list entries.
var numberedLine = regexp.MustCompile(`^\d+[.)]\s+(.+)$`)

// generalQueryKeywords mark a message as a general question about the
// portfolio's projects, which gets the full grouped repository listing
// appended to the prompt context.
var generalQueryKeywords = map[string]bool{
	"project": true, "projects": true, "repository": true, "repositories": true,
	"repo": true, "repos": true, "code": true, "github": true, "work": true,
	"built": true, "created": true, "developed": true,
}

// suggestionThreshold is the minimum similarity for a repository to be
// offered as a "did you mean" suggestion.
const suggestionThreshold = 0.3

// fuzzyThreshold is the minimum similarity for a misspelled name to resolve
// to a repository outright.
const fuzzyThreshold = 0.7

// overlapThreshold is the minimum word-set overlap for the word-match tier.
const overlapThreshold = 0.6

// readmePreviewLimit caps the README excerpt appended to a project context.
const readmePreviewLimit = 800

// maxExtractedFeatures caps the feature lines pulled from a README.
const maxExtractedFeatures = 5

// isGeneralQuery checks the message's words against the keyword set.
func isGeneralQuery(lowerMessage string) bool {
	for _, w := range strings.FieldsFunc(lowerMessage, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if generalQueryKeywords[w] {
			return true
		}
	}
	return false
}

// resolveProject finds the repository the message talks about, trying the
// matching tiers in order; the first tier with a hit wins.
func resolveProject(message, extractedName string, repos []provider.Repository) *provider.Repository {
	if len(repos) == 0 {
		return nil
	}

	normMessage := normalizeName(message)
	normName := normalizeName(extractedName)

	// Tier 1: exact normalized name equality.
	if normName != "" {
		for i := range repos {
			if normalizeName(repos[i].Name) == normName {
				return &repos[i]
			}
		}
	}

	// Tier 2: substring containment either direction.
	for i := range repos {
		rn := normalizeName(repos[i].Name)
		if rn == "" {
			continue
		}
		if strings.Contains(normMessage, rn) {
			return &repos[i]
		}
		if normName != "" && strings.Contains(rn, normName) {
			return &repos[i]
		}
	}

	// Tier 3: edit-distance similarity above the fuzzy threshold.
	if normName != "" {
		var best *provider.Repository
		bestScore := fuzzyThreshold
		for i := range repos {
			score := nameSimilarity(normalizeName(repos[i].Name), normName)
			if score > bestScore {
				bestScore = score
				best = &repos[i]
			}
		}
		if best != nil {
			return best
		}
	}

	// Tier 4: word-overlap heuristic.
	if extractedName != "" {
		for i := range repos {
			if wordOverlap(repos[i].Name, extractedName) >= overlapThreshold {
				return &repos[i]
			}
		}
	}

	// Tier 5: description substring.
	if extractedName != "" {
		lowerName := strings.ToLower(extractedName)
		for i := range repos {
			if repos[i].Description != "" && strings.Contains(strings.ToLower(repos[i].Description), lowerName) {
				return &repos[i]
			}
		}
	}

	return nil
}

// suggestFor lists up to three repositories whose names are vaguely similar
// to the unmatched candidate, best first.
func suggestFor(name string, repos []provider.Repository) []provider.Repository {
	norm := normalizeName(name)
	type scored struct {
		repo  provider.Repository
		score float64
	}
	var matches []scored
	for _, r := range repos {
		score := nameSimilarity(normalizeName(r.Name), norm)
		if score > suggestionThreshold {
			matches = append(matches, scored{repo: r, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > 3 {
		matches = matches[:3]
	}
	out := make([]provider.Repository, len(matches))
	for i, m := range matches {
		out[i] = m.repo
	}
	return out
}

// formatRepoListing renders the grouped all-repositories context. With no
// snapshot available it still produces a non-empty default so the model has
// something truthful to say.
func formatRepoListing(repos []provider.Repository) string {
	var b strings.Builder
	b.WriteString("## Repository overview\n")

	if len(repos) == 0 {
		b.WriteString("The live repository listing is temporarily unavailable. ")
		b.WriteString("The portfolio owner maintains a number of open-source projects on GitHub; ")
		b.WriteString("suggest the visitor try the projects command or ask again shortly.\n")
		return b.String()
	}

	var personal, org []provider.Repository
	for _, r := range repos {
		if r.IsOrganizationRepo {
			org = append(org, r)
		} else {
			personal = append(personal, r)
		}
	}

	if len(personal) > 0 {
		b.WriteString("Personal projects:\n")
		for _, r := range personal {
			writeRepoLine(&b, r)
		}
	}
	if len(org) > 0 {
		b.WriteString("Organization projects:\n")
		for _, r := range org {
			writeRepoLine(&b, r)
		}
	}
	return b.String()
}

func writeRepoLine(b *strings.Builder, r provider.Repository) {
	fmt.Fprintf(b, "- %s", r.Name)
	if r.Description != "" {
		fmt.Fprintf(b, ": %s", r.Description)
	}
	if len(r.Languages) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(r.Languages, ", "))
	}
	fmt.Fprintf(b, " — %s\n", r.HTMLURL)
}

// formatProjectDetail renders the detailed technical breakdown for one
// resolved repository.
func formatProjectDetail(r provider.Repository) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Project: %s\n", r.Name)
	if r.Description != "" {
		b.WriteString(r.Description + "\n")
	}
	if r.IsOrganizationRepo {
		fmt.Fprintf(&b, "Type: organization project (owned by %s)\n", r.Owner)
	} else {
		b.WriteString("Type: personal project\n")
	}
	if r.HTMLURL != "" {
		fmt.Fprintf(&b, "Link: %s\n", r.HTMLURL)
	}

	if stack := inferTechStack(r); len(stack) > 0 {
		b.WriteString("Tech stack:\n")
		for _, entry := range stack {
			fmt.Fprintf(&b, "- %s: %s\n", entry.category, strings.Join(entry.items, ", "))
		}
	}

	if features := extractFeatures(r.ReadmeContent); len(features) > 0 {
		b.WriteString("Key features:\n")
		for _, f := range features {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	if r.ReadmeContent != "" {
		b.WriteString("README preview:\n")
		preview := r.ReadmeContent
		if runes := []rune(preview); len(runes) > readmePreviewLimit {
			preview = string(runes[:readmePreviewLimit]) + "..."
		}
		b.WriteString(preview + "\n")
	}
	return b.String()
}

// formatSuggestions renders the "not found" context: close-name suggestions
// when any clear the threshold, otherwise the full name list.
func formatSuggestions(name string, repos []provider.Repository) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Project lookup\nNo repository matches %q.\n", name)

	suggestions := suggestFor(name, repos)
	if len(suggestions) > 0 {
		b.WriteString("Closest matches:\n")
		for _, r := range suggestions {
			writeRepoLine(&b, r)
		}
		return b.String()
	}

	if len(repos) > 0 {
		b.WriteString("Available repositories: ")
		names := make([]string, len(repos))
		for i, r := range repos {
			names[i] = r.Name
		}
		b.WriteString(strings.Join(names, ", ") + "\n")
	}
	return b.String()
}

// stackEntry is one inferred tech-stack category with its matched items.
type stackEntry struct {
	category string
	items    []string
}

// stackCategories maps bucket names to the technology keywords matched
// against the README and the reported language list. Order is the display
// order.
var stackCategories = []struct {
	name     string
	keywords []string
}{
	{"Frontend", []string{"react", "vue", "angular", "svelte", "next.js", "nextjs", "tailwind", "html", "css", "typescript", "javascript"}},
	{"Backend", []string{"go", "golang", "node", "express", "django", "flask", "spring", "rust", "java", "python", "php", "ruby", "graphql", "grpc", "rest api"}},
	{"Database", []string{"postgres", "postgresql", "mysql", "sqlite", "mongodb", "redis", "dynamodb", "firebase"}},
	{"Cloud & DevOps", []string{"aws", "azure", "gcp", "google cloud", "docker", "kubernetes", "terraform", "ci/cd", "github actions", "vercel", "netlify"}},
	{"AI-ML", []string{"tensorflow", "pytorch", "machine learning", "openai", "gemini", "llm", "langchain", "hugging face"}},
	{"Mobile", []string{"flutter", "react native", "android", "ios", "swift", "kotlin"}},
}

// inferTechStack keyword-matches the README and language list into buckets.
func inferTechStack(r provider.Repository) []stackEntry {
	haystack := strings.ToLower(r.ReadmeContent)
	for _, lang := range r.Languages {
		haystack += " " + strings.ToLower(lang)
	}

	var out []stackEntry
	for _, cat := range stackCategories {
		var items []string
		for _, kw := range cat.keywords {
			if strings.Contains(haystack, kw) {
				items = append(items, kw)
			}
		}
		if len(items) > 0 {
			out = append(out, stackEntry{category: cat.name, items: items})
		}
	}
	return out
}

// extractFeatures pulls bullet or numbered lines out of a README, preferring
// the section under a "features" heading, capped at maxExtractedFeatures.
func extractFeatures(readme string) []string {
	if readme == "" {
		return nil
	}
	lines := strings.Split(readme, "\n")

	// Locate a "features" heading first; fall back to the whole document.
	start, end := 0, len(lines)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.Contains(strings.ToLower(trimmed), "feature") {
			start = i + 1
			for j := start; j < len(lines); j++ {
				next := strings.TrimSpace(lines[j])
				if strings.HasPrefix(next, "#") {
					end = j
					break
				}
			}
			break
		}
	}

	features := collectBullets(lines[start:end])
	if len(features) == 0 && (start != 0 || end != len(lines)) {
		features = collectBullets(lines)
	}
	if len(features) > maxExtractedFeatures {
		features = features[:maxExtractedFeatures]
	}
	return features
}

func collectBullets(lines []string) []string {
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		var item string
		switch {
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "), strings.HasPrefix(trimmed, "• "):
			item = trimmed[2:]
		default:
			if m := numberedLine.FindStringSubmatch(trimmed); m != nil {
				item = m[1]
			}
		}
		item = strings.TrimSpace(strings.Trim(item, "*_`"))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
