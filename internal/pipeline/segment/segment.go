// Package segment splits extracted text into embeddable pieces: question
// units for exam sets and fixed-size overlapping chunks for everything.
package segment

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100

	// minQuestionLen drops split fragments that are marker noise rather
	// than actual question text.
	minQuestionLen = 20
)

var questionMarker = regexp.MustCompile(`(?i)(Q\.?\s*\d+[^:.\n]*[:.]|Question\s*\d+[:.]|Q\s*\d+)`)

// SplitQuestions splits exam-set text on question markers ("Q1", "Question
// 2:", ...) and keeps fragments longer than the noise threshold. Text with no
// recognizable markers comes back as a single element.
func SplitQuestions(text string) []string {
	parts := questionMarker.Split(text, -1)
	markers := questionMarker.FindAllString(text, -1)

	// Interleave markers back with their following text, the way a capture
	// group split would.
	var pieces []string
	for i, p := range parts {
		pieces = append(pieces, p)
		if i < len(markers) {
			pieces = append(pieces, markers[i])
		}
	}

	var questions []string
	for _, p := range pieces {
		if trimmed := strings.TrimSpace(p); len(trimmed) > minQuestionLen {
			questions = append(questions, trimmed)
		}
	}
	if len(questions) == 0 {
		return []string{text}
	}
	return questions
}

// Chunk emits overlapping windows over text, counted in runes so a window
// boundary never lands inside a multi-byte character. The window advances by
// size-overlap, so overlap must stay below size for the loop to make
// progress; callers violating that get an error rather than a hang.
func Chunk(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
