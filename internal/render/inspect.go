package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Summary describes a rendered document.
type Summary struct {
	Title    string
	MetaTags int
	// Missing lists injected pairs with no matching meta tag in the document.
	Missing []Property
}

// Summarize parses html and checks that every injected pair is present.
// Repeated pairs must appear as many times as they were injected.
func Summarize(html string, injected Metadata) (Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		MetaTags: doc.Find("meta").Length(),
	}

	present := make(map[Property]int)
	doc.Find("head meta[property]").Each(func(_ int, sel *goquery.Selection) {
		prop, _ := sel.Attr("property")
		content, _ := sel.Attr("content")
		present[Property{Property: prop, Content: content}]++
	})

	for _, p := range injected {
		if present[p] > 0 {
			present[p]--
			continue
		}
		s.Missing = append(s.Missing, p)
	}
	return s, nil
}
