package actions

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// summaryRenderer passes raw HTML through; reportPolicy strips anything unsafe
// from its output.
var (
	summaryRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	reportPolicy = bluemonday.UGCPolicy()
)

const htmlPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Workflow rollup</title></head>
<body>
`

// renderMarkdown converts the job summary markdown to sanitized HTML.
// An empty summary renders to an empty string.
func renderMarkdown(summary string) string {
	if summary == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := summaryRenderer.Convert([]byte(summary), &buf); err != nil {
		return reportPolicy.Sanitize(summary)
	}
	return reportPolicy.Sanitize(buf.String())
}

// renderHTMLReport wraps the rendered summary in a standalone document.
func renderHTMLReport(summary string) []byte {
	var buf bytes.Buffer
	buf.WriteString(htmlPage)
	buf.WriteString(renderMarkdown(summary))
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}
