package sources

import (
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Some proxies (or a misconfigured READER_URL) hand back raw HTML instead of
// text. extractHTML reduces it to markdown of the main content:
// readability first, goquery boilerplate removal when that fails.

// boilerplateSelectors are removed before falling back to the whole body.
var boilerplateSelectors = strings.Join([]string{
	"script", "style", "noscript", "iframe", "svg",
	"header", "footer", "nav", "aside",
	".advertisement", ".ad", ".sidebar", ".comments",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
}, ", ")

// extractHTML returns markdown for the main content of an HTML page.
// pageURL may be empty.
func extractHTML(body, pageURL string) string {
	parsed, _ := url.Parse(pageURL)
	if parsed == nil {
		parsed = &url.URL{}
	}

	if article, err := readability.FromReader(strings.NewReader(body), parsed); err == nil && strings.TrimSpace(article.TextContent) != "" {
		if md := toMarkdown(article.Content); md != "" {
			return md
		}
		return strings.TrimSpace(article.TextContent)
	}
	return extractWithGoquery(body)
}

func extractWithGoquery(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return toMarkdown(body)
	}
	doc.Find(boilerplateSelectors).Remove()

	sel := doc.Find("article, main, .content, .post-content, .article-content, #content").First()
	if sel.Length() == 0 {
		sel = doc.Find("body")
	}
	html, err := sel.Html()
	if err != nil {
		return strings.TrimSpace(sel.Text())
	}
	if md := toMarkdown(html); md != "" {
		return md
	}
	return strings.TrimSpace(sel.Text())
}

func toMarkdown(html string) string {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}
