package web

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
	textSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
	textSanitizer = bluemonday.StrictPolicy()
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// RenderRecommendations renders version recommendations as a sanitized
// markdown bullet list. The "Label: values" prefix of each entry is bolded.
func RenderRecommendations(recs []string) string {
	if len(recs) == 0 {
		return ""
	}

	var src strings.Builder
	for _, rec := range recs {
		src.WriteString("- ")
		if label, rest, ok := strings.Cut(rec, ": "); ok {
			src.WriteString("**" + label + ":** " + rest)
		} else {
			src.WriteString(rec)
		}
		src.WriteByte('\n')
	}

	return RenderMarkdown(src.String())
}

// RenderStatusText converts upstream build status text into HTML with
// line-level CSS classes. All markup in the input is stripped:
//   - line-error: lines mentioning an error or failure
//   - line-warn: lines mentioning a warning
//   - line-info: everything else
func RenderStatusText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	var buf strings.Builder
	buf.Grow(len(text) * 2)

	for i, line := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}

		buf.WriteString(`<span class="`)
		buf.WriteString(classForStatusLine(line))
		buf.WriteString(`">`)
		buf.WriteString(textSanitizer.Sanitize(line))
		buf.WriteString(`</span>`)
	}

	return buf.String()
}

func classForStatusLine(line string) string {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error"), strings.Contains(lower, "fail"):
		return "line-error"
	case strings.Contains(lower, "warn"):
		return "line-warn"
	default:
		return "line-info"
	}
}
