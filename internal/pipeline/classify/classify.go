// Package classify tags knowledge-base files with a subject and a content
// type. Both functions are pure over their inputs so the metadata-repair job
// can re-run them and get identical answers.
package classify

import (
	"strings"

	"syllabusgpt/internal/model"
)

// MinDirectTextLen is the extracted-text length below which a PDF is assumed
// to be scanned (and therefore a question set needing the OCR path).
const MinDirectTextLen = 500

// subjectRule maps a subject to the filename substrings that select it.
type subjectRule struct {
	subject  model.SubjectTag
	keywords []string
}

// Ordered: first match wins.
var subjectRules = []subjectRule{
	{model.SubjectAI, []string{"ai", "artificial-intelligence", "artificial intelligence"}},
	{model.SubjectML, []string{"ml", "machine learning", "machine-learning", "data science", "data-science"}},
	{model.SubjectIOT, []string{"iot", "internet of things"}},
	{model.SubjectTOC, []string{"toc", "theoryofcomputation", "theory of computation"}},
	{model.SubjectSTDS, []string{"stds", "thinkstats", "statistics", "stats"}},
}

var yearTokens = []string{"2021", "2022", "2023", "2024", "2025"}

// Subject maps a filename to a subject tag by substring match against the
// lowercased name. Unrecognized names get SubjectUnknown.
func Subject(filename string) model.SubjectTag {
	name := strings.ToLower(filename)
	for _, rule := range subjectRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.subject
			}
		}
	}
	return model.SubjectUnknown
}

// ContentType decides between reference material and a question set. A file
// is a question set when its name carries a year token, or when direct
// extraction produced almost no text, which signals a scanned document.
func ContentType(filename, extractedText string) model.ContentType {
	name := strings.ToLower(filename)
	for _, year := range yearTokens {
		if strings.Contains(name, year) {
			return model.ContentPYQ
		}
	}
	if len(strings.TrimSpace(extractedText)) < MinDirectTextLen {
		return model.ContentPYQ
	}
	return model.ContentBook
}
