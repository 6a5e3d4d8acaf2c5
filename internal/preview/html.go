// Package preview renders a lunch report as HTML for a browser.
package preview

import (
	"bytes"
	"fmt"
	stdhtml "html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// The report's *bold* and ~strike~ markers read as emphasis and
// strikethrough in Markdown, and every line break is kept.
var md = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// HTML converts report text to an HTML fragment.
func HTML(report string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(report), &buf); err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return buf.String(), nil
}

// Page wraps the fragment in a minimal standalone document.
func Page(title, report string) (string, error) {
	body, err := HTML(report)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(stdhtml.EscapeString(title))
	buf.WriteString("</title></head><body>\n")
	buf.WriteString(body)
	buf.WriteString("</body></html>\n")
	return buf.String(), nil
}
