// Package extract pulls the readable text out of an HTML page using a fixed
// cascade: article, main, the largest div or section, then the whole
// document. The first stage that yields text wins.
package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/searchagent/internal/helpers"
)

const DefaultMaxChars = 5000

// Method names the cascade stage that produced the text.
type Method string

const (
	MethodArticle  Method = "article"
	MethodMain     Method = "main"
	MethodBlock    Method = "block"
	MethodDocument Method = "document"
	MethodNone     Method = "none"
)

type Result struct {
	Title  string
	Text   string
	Method Method
}

// hidden elements never contribute visible text.
var hidden = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// Extract runs the cascade over html. The text is truncated to maxChars
// runes; an empty Text means nothing readable was found.
func Extract(html, pageURL string, maxChars int) (Result, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, goerr.Wrap(err, "failed to parse html", goerr.V("url", pageURL))
	}

	text, method := cascade(doc)
	return Result{
		Title:  title(doc, html, pageURL),
		Text:   helpers.TruncateRunes(text, maxChars),
		Method: method,
	}, nil
}

func cascade(doc *goquery.Document) (string, Method) {
	if t := VisibleText(doc.Find("article").First()); t != "" {
		return t, MethodArticle
	}
	if t := VisibleText(doc.Find("main").First()); t != "" {
		return t, MethodMain
	}
	if t := largestBlock(doc); t != "" {
		return t, MethodBlock
	}
	if t := VisibleText(doc.Selection); t != "" {
		return t, MethodDocument
	}
	return "", MethodNone
}

// largestBlock picks the div or section with the most visible characters.
// The first in document order wins a tie.
func largestBlock(doc *goquery.Document) string {
	var best string
	bestLen := 0
	doc.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		t := VisibleText(s)
		if n := utf8.RuneCountInString(t); n > bestLen {
			best, bestLen = t, n
		}
	})
	return best
}

// VisibleText returns the text under sel with hidden elements skipped and
// whitespace collapsed.
func VisibleText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch name := goquery.NodeName(c); {
			case name == "#text":
				b.WriteString(c.Text())
				b.WriteByte(' ')
			case name == "#comment", hidden[name]:
			default:
				walk(c)
			}
		})
	}
	walk(sel)
	return helpers.CollapseSpace(b.String())
}

func title(doc *goquery.Document, html, pageURL string) string {
	if t := helpers.CollapseSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if u, err := url.Parse(pageURL); err == nil {
		if article, err := readability.FromReader(strings.NewReader(html), u); err == nil {
			if t := helpers.CollapseSpace(article.Title); t != "" {
				return t
			}
		}
	}
	return pageURL
}
