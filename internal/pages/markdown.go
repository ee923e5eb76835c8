package pages

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe(), goldmarkhtml.WithXHTML()),
	)
	// markdown pages may carry inline HTML, which is filtered here
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

func markdownToHTML(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(ugcPolicy.SanitizeBytes(buf.Bytes())), nil
}

// plainText strips every tag and collapses whitespace.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	out := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(out), " ")
}
