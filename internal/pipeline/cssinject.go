package pipeline

import (
	"context"
	"strings"
)

// CSSInjector places a stylesheet into rendered markup.
type CSSInjector interface {
	InjectCSS(ctx context.Context, markup, css string) string
}

// CSSInjection inserts CSS as a <style> block before </head>, or at the very
// start of the markup when there is no head.
type CSSInjection struct{}

// InjectCSS returns markup with css embedded. Empty css or a cancelled
// context leaves markup untouched.
func (CSSInjection) InjectCSS(ctx context.Context, markup, css string) string {
	if css == "" || ctx.Err() != nil {
		return markup
	}

	block := "<style>" + sanitizeCSS(css) + "</style>"
	if idx := strings.Index(strings.ToLower(markup), "</head>"); idx != -1 {
		return markup[:idx] + block + markup[idx:]
	}
	return block + markup
}

// sanitizeCSS escapes "</" so the stylesheet cannot close its own <style>.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// Compile-time interface check.
var _ CSSInjector = CSSInjection{}
