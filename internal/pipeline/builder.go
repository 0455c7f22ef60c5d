package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-jd2pdf/internal/assets"
)

// A4 at 96 CSS px per inch.
const (
	PageWidthPx  = 794
	PageHeightPx = 1123
)

// requiredPartials must be defined by every template set.
var requiredPartials = []string{"header", "footer"}

// MarkupBuilder produces self-contained document markup.
type MarkupBuilder interface {
	Build(ctx context.Context, data PageData) (string, error)
}

// Builder executes a template set and embeds its stylesheet. A Builder is
// safe for concurrent use.
type Builder struct {
	tmpl     *template.Template
	css      string
	desc     DescriptionRenderer
	injector CSSInjector
}

// NewBuilder parses set. A nil desc uses NewMarkdownDescription.
func NewBuilder(set *assets.TemplateSet, css string, desc DescriptionRenderer) (*Builder, error) {
	if set == nil || strings.TrimSpace(set.Document) == "" {
		return nil, fmt.Errorf("%w: empty template set", ErrTemplateParse)
	}

	tmpl, err := template.New("document").Parse(set.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	for _, name := range requiredPartials {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("%w: template set %q does not define %q", ErrTemplateParse, set.Name, name)
		}
	}

	if desc == nil {
		desc = NewMarkdownDescription()
	}
	return &Builder{tmpl: tmpl, css: css, desc: desc, injector: CSSInjection{}}, nil
}

// view shadows the Markdown source with its rendered HTML.
type view struct {
	PageData
	Description template.HTML
}

// Build renders data into one HTML document. The output depends only on
// data, so equal inputs (including the footer timestamp) give equal markup.
func (b *Builder) Build(ctx context.Context, data PageData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !strings.HasPrefix(string(data.Logo), "data:image/") {
		data.Logo = ""
	}

	desc, err := b.desc.Render(ctx, data.Description)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, view{PageData: data, Description: desc}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	markup := strings.TrimSpace(buf.String())
	return b.injector.InjectCSS(ctx, markup, b.css), nil
}

// Compile-time interface check.
var _ MarkupBuilder = (*Builder)(nil)
