package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Stats describes generated markup.
type Stats struct {
	Pages           int
	TextElements    int
	SkillColumns    int
	Sections        []string // section class names in document order
	LogoPlaceholder bool
}

// textSelector lists elements that carry body text.
const textSelector = "p, li, dd, dt, h1, h2, h3, td, span"

// Inspect parses markup and reports its structure.
func Inspect(markup string) (Stats, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrMarkupParse, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	stats := Stats{
		Pages:           doc.Find("div.page").Length(),
		LogoPlaceholder: doc.Find(".logo-placeholder").Length() > 0,
	}

	doc.Find(textSelector).Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) != "" {
			stats.TextElements++
		}
	})

	if cols, ok := doc.Find(".skills-grid").First().Attr("data-columns"); ok {
		stats.SkillColumns, _ = strconv.Atoi(cols)
	}

	doc.Find("section.section").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		for _, c := range strings.Fields(class) {
			if c != "section" {
				stats.Sections = append(stats.Sections, c)
			}
		}
	})
	return stats, nil
}

// HasSection reports whether the named section was rendered.
func (s Stats) HasSection(name string) bool {
	for _, sec := range s.Sections {
		if sec == name {
			return true
		}
	}
	return false
}
