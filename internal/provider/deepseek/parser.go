package deepseek

import (
	"fmt"
	"strings"
)

const (
	markerTitle   = "---TITLE---"
	markerContent = "---CONTENT---"
	markerPrompts = "---IMAGE_PROMPTS---"

	fallbackPromptCount = 3
)

// GeneratedContent is a parsed article draft.
type GeneratedContent struct {
	Title        string
	Content      string
	ImagePrompts []string
	TokensUsed   int
}

// HTML renders the content as paragraph markup for publication. Content
// that already carries markup is passed through unchanged.
func (c *GeneratedContent) HTML() string {
	if strings.Contains(c.Content, "<p>") {
		return c.Content
	}

	var b strings.Builder
	for _, para := range strings.Split(c.Content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(para, "\n", "<br>"))
		b.WriteString("</p>\n")
	}
	return strings.TrimSpace(b.String())
}

// Parse splits a raw completion into title, body and image prompts using
// the section markers the prompt template asks for. Models do not always
// comply, so each section degrades independently: a missing title falls
// back to the first line of the body, and missing prompts are synthesized
// from the title so the pipeline always has images to request.
func Parse(raw string) *GeneratedContent {
	raw = strings.TrimSpace(raw)

	title := extractSection(raw, markerTitle, markerContent)
	content := extractSection(raw, markerContent, markerPrompts)
	promptsBlock := extractSection(raw, markerPrompts, "")

	if content == "" {
		// No usable content marker; treat the whole reply as the body.
		content = stripMarkers(raw)
	}

	if title == "" {
		title, content = splitFirstLine(content)
	}

	prompts := parsePromptLines(promptsBlock)
	if len(prompts) == 0 {
		prompts = synthesizePrompts(title)
	}

	return &GeneratedContent{
		Title:        title,
		Content:      strings.TrimSpace(content),
		ImagePrompts: prompts,
	}
}

// extractSection returns the text between start and end markers, or "" when
// the start marker is absent. An empty end marker means read to the end.
func extractSection(raw, start, end string) string {
	idx := strings.Index(raw, start)
	if idx < 0 {
		return ""
	}
	section := raw[idx+len(start):]
	if end != "" {
		if endIdx := strings.Index(section, end); endIdx >= 0 {
			section = section[:endIdx]
		}
	}
	return strings.TrimSpace(section)
}

func stripMarkers(raw string) string {
	for _, marker := range []string{markerTitle, markerContent, markerPrompts} {
		raw = strings.ReplaceAll(raw, marker, "")
	}
	return strings.TrimSpace(raw)
}

// splitFirstLine promotes the first non-empty line to the title and returns
// the remainder as content.
func splitFirstLine(content string) (string, string) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line == "" {
			continue
		}
		return line, strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
	}
	return "", content
}

// parsePromptLines reads one prompt per line, tolerating list numbering and
// bullet prefixes.
func parsePromptLines(block string) []string {
	var prompts []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		if line == "" {
			continue
		}
		prompts = append(prompts, line)
	}
	return prompts
}

func synthesizePrompts(title string) []string {
	if title == "" {
		title = "the article"
	}
	prompts := make([]string, 0, fallbackPromptCount)
	prompts = append(prompts,
		fmt.Sprintf("Editorial illustration for an article titled %q, clean modern style", title),
		fmt.Sprintf("Minimalist conceptual artwork representing the theme of %q", title),
		fmt.Sprintf("Photorealistic wide shot evoking %q, natural lighting", title),
	)
	return prompts
}
