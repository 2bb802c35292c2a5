package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// penaltyMarkers — признаки служебных картинок (логотипы, шапки).
var penaltyMarkers = []string{"logo", "banner", "header", "icon"}

const penaltyFactor = 0.2

// contentRegions — запасные области основного содержимого.
var contentRegions = []string{
	"article",
	"main",
	`[role="main"]`,
	".content",
	"#content",
	".post",
	".entry-content",
}

type candidate struct {
	url   string
	score float64
}

// pickImage выбирает ведущее изображение:
//  1. лучшее по площади в теле статьи (readability, иначе contentRegions, иначе весь документ);
//  2. og:image / twitter:image;
//  3. лучшее по площади во всём документе.
func pickImage(doc *goquery.Document, art readability.Article, hasArticle bool, base *url.URL) *string {
	region := articleRegion(doc, art, hasArticle)
	if c, ok := bestImage(region, base); ok {
		return &c.url
	}

	if v := metaContent(doc, imageSelectors); v != "" {
		if abs, ok := absolute(base, v); ok {
			return &abs
		}
	}

	if c, ok := bestImage(doc.Selection, base); ok {
		return &c.url
	}
	return nil
}

func articleRegion(doc *goquery.Document, art readability.Article, hasArticle bool) *goquery.Selection {
	if hasArticle && strings.TrimSpace(art.Content) != "" {
		if d, err := goquery.NewDocumentFromReader(strings.NewReader(art.Content)); err == nil {
			return d.Selection
		}
	}
	for _, sel := range contentRegions {
		if s := doc.Find(sel); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

func bestImage(scope *goquery.Selection, base *url.URL) (candidate, bool) {
	var best candidate
	found := false

	scope.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := imgSource(img)
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			return
		}
		abs, ok := absolute(base, src)
		if !ok {
			return
		}

		c := candidate{url: abs, score: area(img)}
		lower := strings.ToLower(abs)
		for _, m := range penaltyMarkers {
			if strings.Contains(lower, m) {
				c.score *= penaltyFactor
				break
			}
		}

		if !found || c.score > best.score {
			best, found = c, true
		}
	})

	return best, found
}

func imgSource(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-original"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// area — заявленная площадь width×height. Без размеров картинка получает 1,
// чтобы любая картинка с размерами была предпочтительнее.
func area(img *goquery.Selection) float64 {
	w := dimension(img, "width")
	h := dimension(img, "height")
	if w <= 0 || h <= 0 {
		return 1
	}
	return w * h
}

func dimension(img *goquery.Selection, attr string) float64 {
	v, ok := img.Attr(attr)
	if !ok {
		return 0
	}
	v = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(v)), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func absolute(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}
