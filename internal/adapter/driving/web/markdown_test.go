package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	result := RenderMarkdown("hello world")
	assert.Contains(t, result, "hello world")
}

func TestRenderMarkdown_Bold(t *testing.T) {
	result := RenderMarkdown("**bold text**")
	assert.Contains(t, result, "<strong>bold text</strong>")
}

func TestRenderMarkdown_InlineCode(t *testing.T) {
	result := RenderMarkdown("use `fmt.Println`")
	assert.Contains(t, result, "<code>fmt.Println</code>")
}

func TestRenderMarkdown_CodeBlock(t *testing.T) {
	input := "```go\nfmt.Println(\"hello\")\n```"
	result := RenderMarkdown(input)
	assert.Contains(t, result, "<code")
	assert.Contains(t, result, "fmt.Println")
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := RenderMarkdown("[click](https://example.com)")
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_GFMStrikethrough(t *testing.T) {
	result := RenderMarkdown("~~deleted~~")
	assert.Contains(t, result, "<del>deleted</del>")
}

func TestRenderMarkdown_GFMTaskList(t *testing.T) {
	result := RenderMarkdown("- [x] done\n- [ ] todo")
	assert.Contains(t, result, "<li>")
	assert.Contains(t, result, "done")
	assert.Contains(t, result, "todo")
}

func TestRenderRecommendations_Empty(t *testing.T) {
	assert.Equal(t, "", RenderRecommendations(nil))
}

func TestRenderRecommendations_BoldsLabels(t *testing.T) {
	result := RenderRecommendations([]string{
		"New versions detected: GO2 Version 613",
		"Current versions updated: GO2 Version 613, GO2 Version 612",
	})

	assert.Equal(t, 2, strings.Count(result, "<li>"))
	assert.Contains(t, result, "<strong>New versions detected:</strong> GO2 Version 613")
}

func TestRenderRecommendations_SanitizesInput(t *testing.T) {
	result := RenderRecommendations([]string{`New versions detected: <img src=x onerror="alert(1)">`})
	assert.NotContains(t, result, "onerror")
}

func TestRenderStatusText_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderStatusText("  "))
}

func TestRenderStatusText_LineClasses(t *testing.T) {
	text := "Tests failed: 3 (1 new)\nWarning: low disk space\nExit code 0"
	result := RenderStatusText(text)

	assert.Contains(t, result, `class="line-error"`)
	assert.Contains(t, result, `class="line-warn"`)
	assert.Contains(t, result, `class="line-info"`)
}

func TestRenderStatusText_StripsHTML(t *testing.T) {
	result := RenderStatusText("Compilation error in <script>alert('xss')</script><b>main.cpp</b>")

	assert.NotContains(t, result, "<script>")
	assert.NotContains(t, result, "<b>")
	assert.Contains(t, result, "main.cpp")
	assert.Contains(t, result, `class="line-error"`)
}

func TestRenderStatusText_PreservesNewlines(t *testing.T) {
	result := RenderStatusText("one\ntwo\nthree")

	spans := strings.Count(result, "<span")
	assert.Equal(t, 3, spans)
}
