package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// DescriptionRenderer turns a job description into safe HTML.
type DescriptionRenderer interface {
	Render(ctx context.Context, source string) (template.HTML, error)
}

// MarkdownDescription renders descriptions as Markdown and sanitizes the
// result. Descriptions often come from rich-text editors and carry raw HTML,
// so goldmark passes HTML through and bluemonday removes anything unsafe.
type MarkdownDescription struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// chromaClass matches the CSS classes emitted by the highlighter.
var chromaClass = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)

// NewMarkdownDescription creates a MarkdownDescription with GFM and syntax
// highlighting for fenced code.
func NewMarkdownDescription() *MarkdownDescription {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
			gmhtml.WithUnsafe(), // sanitized below
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(chromaClass).OnElements("pre", "code", "span")

	return &MarkdownDescription{md: md, policy: policy}
}

// Render converts source to sanitized HTML. Goldmark has no context support,
// so conversion runs in a goroutine raced against ctx.
func (m *MarkdownDescription) Render(ctx context.Context, source string) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := m.md.Convert([]byte(normalizeNewlines(source)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrDescriptionRender, err)}
			return
		}
		done <- result{html: m.policy.Sanitize(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		// #nosec G203 -- sanitized by bluemonday
		return template.HTML(r.html), r.err
	}
}

var stripAll = bluemonday.StrictPolicy()

// PlainText removes markup from a free-text field while keeping line
// structure, so list fields pasted from an editor do not show raw tags.
func PlainText(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	s = blockBreaks.ReplaceAllString(s, "\n")
	return html.UnescapeString(stripAll.Sanitize(s))
}

// blockBreaks matches tags that end a visual line.
var blockBreaks = regexp.MustCompile(`(?i)<\s*(br\s*/?|/p|/li|/div|/h[1-6])\s*>`)

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// Compile-time interface check.
var _ DescriptionRenderer = (*MarkdownDescription)(nil)
