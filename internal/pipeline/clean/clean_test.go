package clean

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTextDropsNoiseLines(t *testing.T) {
	input := strings.Join([]string{
		"Copyright 2020 Example Press. All rights reserved.",
		"ISBN 978-0-000-00000-0",
		"Table of Contents",
		"Agents perceive their environment through sensors.",
		"Rational agents act to maximize expected utility.",
	}, "\n")

	got := Text(input, 0)
	assert.NotContains(t, got, "ISBN")
	assert.NotContains(t, got, "Copyright")
	assert.Contains(t, got, "maximize expected utility")
}

func TestTextDropsShortLines(t *testing.T) {
	input := "ab\n---\nA line that is long enough to survive the filter.\nxy"
	got := Text(input, 0)
	assert.Equal(t, "A line that is long enough to survive the filter.", got)
}

func TestTextFrontSkip(t *testing.T) {
	body := strings.Repeat("useful content line here\n", 20)
	cleaned := strings.TrimSuffix(body, "\n")
	got := Text(body, 100)
	assert.Equal(t, cleaned[100:], got)
}

// Short documents keep at least half their text no matter how large the
// configured skip is.
func TestTextFrontSkipCappedAtHalf(t *testing.T) {
	input := "A short document with only this single meaningful line."
	got := Text(input, 10_000)
	assert.Equal(t, input[len(input)/2:], got)
}

// The skip counts runes, so a boundary inside accented text must not leave a
// broken leading byte.
func TestTextFrontSkipMultibyte(t *testing.T) {
	input := strings.Repeat("é", 40)
	got := Text(input, 7)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 33), got)
}

func TestTextNegativeSkipUsesDefault(t *testing.T) {
	short := "only a little text survives the cleaning pass here"
	// Default skip far exceeds the text, so the half cap applies.
	assert.Equal(t, short[len(short)/2:], Text(short, -1))
}
