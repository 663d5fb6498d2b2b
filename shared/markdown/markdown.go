package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// messageLinkRegex matches >>N after html escaping.
var messageLinkRegex = regexp.MustCompile(`&gt;&gt;(\d+)`)

// TextProcessor renders message content into safe HTML.
// Safe for concurrent use.
type TextProcessor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *TextProcessor {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewAutoLinkParser(), 300),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(html.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile("^message-link$")).OnElements("a")
	policy.AllowAttrs("data-message-id").Matching(regexp.MustCompile(`^\d+$`)).OnElements("a")
	policy.AllowRelativeURLs(true)

	return &TextProcessor{md: md, policy: policy}
}

// Render converts stored markdown into sanitized HTML.
// Raw HTML in the source is never passed through.
// On renderer failure the escaped source is returned.
func (tp *TextProcessor) Render(text string) string {
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		return tp.policy.Sanitize(text)
	}
	rendered := strings.TrimSpace(buf.String())
	rendered = messageLinkRegex.ReplaceAllStringFunc(rendered, func(match string) string {
		id := messageLinkRegex.FindStringSubmatch(match)[1]
		return fmt.Sprintf(`<a class="message-link" href="#msg-%s" data-message-id="%s">&gt;&gt;%s</a>`, id, id, id)
	})
	return tp.policy.Sanitize(rendered)
}
