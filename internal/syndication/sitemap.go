package syndication

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/pribylovaa/news-digest/internal/present"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []sitemapURL
}

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

// Sitemap — индекс ленты на каждой локали и по адресу на элемент и локаль.
// lastmod элемента = updatedAt, у индексов — now.
func (b *Builder) Sitemap(views []present.View, now time.Time) ([]byte, error) {
	const op = "syndication.sitemap.Sitemap"

	set := urlset{XMLNS: sitemapNS}
	for _, loc := range b.site.Locales {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     fmt.Sprintf("%s/%s/news", b.site.BaseURL, loc),
			LastMod: now.UTC().Format(time.RFC3339),
		})
	}
	for _, v := range views {
		for _, loc := range b.site.Locales {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:     b.ItemURL(loc, v.ID.String()),
				LastMod: v.UpdatedAt.UTC().Format(time.RFC3339),
			})
		}
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return append([]byte(xml.Header), body...), nil
}
