// Package syllabus breaks a multi-unit syllabus into per-unit spans that the
// notes pipeline processes one at a time.
package syllabus

import (
	"regexp"
	"strings"
)

// DefaultUnitTitle names the single implicit unit used when a syllabus has no
// recognizable unit markers.
const DefaultUnitTitle = "Syllabus"

// Matches "UNIT-I:", "Unit 2.", "UNIT III" and similar, with a Roman or
// Arabic numeral and an optional trailing separator.
var unitMarker = regexp.MustCompile(`(?i)UNIT[\s-]*(?:[IVXLCDM]+|\d+)\s*[:.\-]?`)

// Unit is one named span of a syllabus.
type Unit struct {
	Title string
	Text  string
}

// SplitUnits partitions syllabus text at unit markers. Each marker becomes a
// unit title paired with the text up to the next marker. Text before the
// first marker is treated as a heading and discarded; units whose bodies trim
// to nothing are dropped. With no markers at all, the whole text is one unit.
func SplitUnits(text string) []Unit {
	locs := unitMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []Unit{{Title: DefaultUnitTitle, Text: trimmed}}
	}

	var units []Unit
	for i, loc := range locs {
		title := strings.TrimSpace(text[loc[0]:loc[1]])
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])
		if body == "" {
			continue
		}
		units = append(units, Unit{Title: title, Text: body})
	}
	return units
}
