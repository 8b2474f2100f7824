// Package clean strips boilerplate from extracted reference text before
// chunking. Heuristic line filtering only, no structural parsing.
package clean

import "strings"

// DefaultFrontSkipChars is how much of the cleaned text is discarded as front
// matter (covers, prefaces) before useful content starts.
const DefaultFrontSkipChars = 3000

var noiseKeywords = []string{
	"copyright", "all rights reserved", "isbn", "publisher",
	"acknowledgements", "acknowledgments", "preface",
	"about the author", "table of contents", "contents",
	"printed in", "edition", "foreword",
}

// Text removes boilerplate lines and the front-matter prefix. Lines whose
// lowercased content contains a noise keyword, or whose trimmed length is at
// most 3 characters, are dropped. The front skip is capped at half the cleaned
// text so short documents are not reduced to nothing.
func Text(text string, frontSkipChars int) string {
	if frontSkipChars < 0 {
		frontSkipChars = DefaultFrontSkipChars
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		low := strings.ToLower(strings.TrimSpace(line))
		if len(low) <= 3 {
			continue
		}
		if containsAny(low, noiseKeywords) {
			continue
		}
		kept = append(kept, line)
	}

	// The skip is counted in runes so the cut never splits a multi-byte
	// character.
	cleaned := []rune(strings.Join(kept, "\n"))

	skip := frontSkipChars
	if max := len(cleaned) / 2; skip > max {
		skip = max
	}
	return string(cleaned[skip:])
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
