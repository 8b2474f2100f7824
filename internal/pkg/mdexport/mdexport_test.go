package mdexport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML(t *testing.T) {
	out, err := HTML("AI - Generated Notes", "# Heading\n\nSome **bold** text.\n\n---\n")
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<title>AI - Generated Notes</title>")
	assert.Contains(t, page, "<h1")
	assert.Contains(t, page, "<strong>bold</strong>")
	assert.Contains(t, page, "<hr>")
}

func TestHTMLEscapesTitle(t *testing.T) {
	out, err := HTML("<script>alert(1)</script>", "body")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
}

func TestHTMLTables(t *testing.T) {
	out, err := HTML("notes", "| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<table>")
}
