package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText returns the visible text of a saved profile page. Script, style
// and template blocks are dropped; JSON embedded in <script type="application/json">
// or window.__INITIAL_STATE__ blobs is kept because crawlers and saved XHS pages
// carry note data there.
func HTMLToText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var embedded []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		typ, _ := s.Attr("type")
		body := strings.TrimSpace(s.Text())
		switch {
		case typ == "application/json" || typ == "application/ld+json":
			embedded = append(embedded, body)
		case strings.HasPrefix(body, "window.__INITIAL_STATE__"):
			body = strings.TrimPrefix(body, "window.__INITIAL_STATE__")
			body = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body), "="))
			embedded = append(embedded, strings.TrimSuffix(body, ";"))
		}
	})
	doc.Find("script, style, noscript, template").Remove()

	var lines []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		lines = append(lines, title)
	}
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		if line = collapseSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	lines = append(lines, embedded...)
	return strings.Join(lines, "\n"), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
