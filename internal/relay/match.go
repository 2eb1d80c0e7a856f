package relay

import (
	"regexp"
	"strings"
)

// normalizeName folds case and strips non-alphanumerics so that
// "My-Project", "my_project", and "My Project?" all compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// levenshteinDistance computes the edit distance between two strings using
// two rolling rows.
func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 0; i < len(a); i++ {
		curr[0] = i + 1
		for j := 0; j < len(b); j++ {
			cost := 0
			if a[i] != b[j] {
				cost = 1
			}
			curr[j+1] = min(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// nameSimilarity scores two already-normalized names in [0,1] as
// (maxLen - editDistance) / maxLen.
func nameSimilarity(a, b string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1.0
	}
	return float64(maxLen-levenshteinDistance(a, b)) / float64(maxLen)
}

// wordOverlap returns the share of the shorter word set found in the longer
// one. Words are split on spaces, hyphens, and underscores.
func wordOverlap(a, b string) float64 {
	wa := splitWords(a)
	wb := splitWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	if len(wb) < len(wa) {
		wa, wb = wb, wa
	}
	longer := make(map[string]bool, len(wb))
	for _, w := range wb {
		longer[w] = true
	}
	matched := 0
	for _, w := range wa {
		if longer[w] {
			matched++
		}
	}
	return float64(matched) / float64(len(wa))
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
}

// projectNamePatterns extract a candidate project name from free text.
// Ordered: the more specific phrasings win.
var projectNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:about|called|named)\s+(?:the\s+)?([\w.\-]+(?:\s+[\w.\-]+)?)`),
	regexp.MustCompile(`(?i)\b([\w.\-]+)\s+(?:project|repo|repository)\b`),
	regexp.MustCompile(`(?i)(?:project|repo|repository)\s+(?:called\s+|named\s+)?([\w.\-]+)`),
}

// nameStopWords are trailing words an extractor capture may pick up that are
// never part of a repository name.
var nameStopWords = map[string]bool{
	"project": true, "projects": true, "repo": true, "repos": true,
	"repository": true, "repositories": true, "please": true, "again": true,
	"it": true, "that": true, "this": true, "one": true,
	"the": true, "your": true, "my": true, "our": true, "their": true,
	"you": true, "some": true, "any": true, "all": true, "of": true,
}

// extractProjectName pulls a candidate project name out of the message, or
// returns empty when the message doesn't name one.
func extractProjectName(message string) string {
	for _, re := range projectNamePatterns {
		m := re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		candidate := strings.Trim(m[1], " ?!.,:;\"'")
		words := strings.Fields(candidate)
		for len(words) > 0 && nameStopWords[strings.ToLower(words[0])] {
			words = words[1:]
		}
		for len(words) > 0 && nameStopWords[strings.ToLower(words[len(words)-1])] {
			words = words[:len(words)-1]
		}
		candidate = strings.Join(words, " ")
		if candidate != "" && !nameStopWords[strings.ToLower(candidate)] {
			return candidate
		}
	}
	return ""
}

// followUpMarkers recognize anaphoric questions about the previously
// discussed project ("what tech stack is used in it").
var followUpMarkers = []string{
	"in it", "it use", "it used", "does it", "is it", "about it",
	"that project", "this project", "the project", "the same project",
	"its tech", "its stack",
}

// isFollowUp reports whether a lowercased message refers back to the last
// discussed project without naming one.
func isFollowUp(lowerMessage string) bool {
	for _, marker := range followUpMarkers {
		if strings.Contains(lowerMessage, marker) {
			return true
		}
	}
	return false
}
