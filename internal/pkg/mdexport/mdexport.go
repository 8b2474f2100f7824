// Package mdexport renders generated Markdown notes as a standalone HTML
// document for download.
package mdexport

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(ghtml.WithHardWraps()),
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 50rem; margin: 2rem auto; font-family: Georgia, serif; line-height: 1.6; padding: 0 1rem; }
h1, h2, h3 { font-family: Helvetica, Arial, sans-serif; }
hr { margin: 2.5rem 0; border: none; border-top: 1px solid #ccc; }
pre { background: #f6f6f6; padding: 1rem; overflow-x: auto; }
blockquote { color: #666; border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTML converts Markdown to a self-contained HTML page with the given title.
func HTML(title, markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := renderer.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("render markdown failed: %w", err)
	}
	page := fmt.Sprintf(pageTemplate, html.EscapeString(title), body.String())
	return []byte(page), nil
}
