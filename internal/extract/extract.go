// Package extract извлекает из HTML статьи заголовок, дату публикации,
// ведущее изображение и текст. Функции пакета чистые и не возвращают ошибок:
// на битом HTML результат просто пустой.
package extract

import (
	"bytes"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pribylovaa/news-digest/internal/models"
)

// MaxExcerptRunes — потолок длины текста статьи.
const MaxExcerptRunes = 6000

var titleSelectors = []string{
	`meta[property="og:title"]`,
	`meta[name="twitter:title"]`,
	`meta[name="title"]`,
}

var dateSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="pubdate"]`,
	`meta[name="publishdate"]`,
	`meta[name="date"]`,
	`meta[name="timestamp"]`,
	`time[datetime]`,
}

var imageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[name="twitter:image"]`,
	`meta[property="og:image:url"]`,
}

// Extract разбирает страницу pageURL.
func Extract(html, pageURL string) (out models.Extracted) {
	defer func() {
		if recover() != nil {
			out = models.Extracted{}
		}
	}()

	base, _ := url.Parse(pageURL)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Extracted{}
	}

	article, hasArticle := readable(html, base)

	out.Title = pickTitle(doc)
	out.PublishedAt = parseDate(metaContent(doc, dateSelectors))
	out.OGImageURL = pickImage(doc, article, hasArticle, base)

	text := ""
	if hasArticle {
		text = article.TextContent
	}
	if strings.TrimSpace(text) == "" {
		text = doc.Find("body").Text()
	}
	out.Excerpt = truncateRunes(normalizeSpace(text), MaxExcerptRunes)

	return out
}

// readable запускает readability; паника или ошибка -> (_, false).
func readable(html string, base *url.URL) (a readability.Article, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if base == nil {
		base = &url.URL{}
	}
	a, err := readability.FromReader(bytes.NewReader([]byte(html)), base)
	if err != nil {
		return readability.Article{}, false
	}
	return a, strings.TrimSpace(a.Content) != "" || strings.TrimSpace(a.TextContent) != ""
}

func pickTitle(doc *goquery.Document) *string {
	if v := metaContent(doc, titleSelectors); v != "" {
		return &v
	}
	if v := normalizeSpace(doc.Find("h1").First().Text()); v != "" {
		return &v
	}
	if v := normalizeSpace(doc.Find("title").First().Text()); v != "" {
		return &v
	}
	return nil
}

// metaContent возвращает первое непустое content/datetime по списку селекторов.
func metaContent(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		v, _ := el.Attr("content")
		if strings.TrimSpace(v) == "" {
			v, _ = el.Attr("datetime")
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
}

// parseDate разбирает дату по фиксированному списку форматов; неудача -> nil.
func parseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
