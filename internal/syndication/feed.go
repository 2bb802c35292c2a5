// syndication строит публичные RSS/Atom-ленты и sitemap из эффективных представлений.
package syndication

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/pribylovaa/news-digest/internal/config"
	"github.com/pribylovaa/news-digest/internal/present"
)

// Builder знает адрес сайта и локали для ссылок.
type Builder struct {
	site config.SiteConfig
}

// New создаёт Builder. Без локалей используется "zh".
func New(site config.SiteConfig) *Builder {
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	if len(site.Locales) == 0 {
		site.Locales = []string{"zh"}
	}
	return &Builder{site: site}
}

// ItemURL — страница элемента на сайте в заданной локали.
func (b *Builder) ItemURL(locale, id string) string {
	return fmt.Sprintf("%s/%s/news/%s", b.site.BaseURL, locale, id)
}

func (b *Builder) feed(views []present.View, now time.Time) *feeds.Feed {
	locale := b.site.Locales[0]

	f := &feeds.Feed{
		Title:       b.site.Title,
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/%s/news", b.site.BaseURL, locale)},
		Description: b.site.Description,
		Id:          fmt.Sprintf("%s/%s/news", b.site.BaseURL, locale),
		Created:     now,
	}

	for _, v := range views {
		item := &feeds.Item{
			Title:       v.Title,
			Link:        &feeds.Link{Href: b.ItemURL(locale, v.ID.String())},
			Source:      &feeds.Link{Href: v.URL},
			Description: describe(v),
			Id:          v.ID.String(),
			Created:     v.PublishedAt,
			Updated:     v.UpdatedAt,
		}
		if v.SourceName != "" {
			item.Author = &feeds.Author{Name: v.SourceName}
		}
		if v.ImageURL != nil {
			item.Enclosure = &feeds.Enclosure{Url: *v.ImageURL, Type: "image/jpeg"}
		}
		f.Items = append(f.Items, item)
	}

	if len(views) > 0 {
		f.Updated = views[0].UpdatedAt
	}
	return f
}

// describe — текст элемента ленты: абзац сводки, иначе пункты через перевод строки.
func describe(v present.View) string {
	if v.Summary.Paragraph != "" {
		return v.Summary.Paragraph
	}
	return strings.Join(v.Summary.Bullets, "\n")
}

// RSS — лента RSS 2.0.
func (b *Builder) RSS(views []present.View, now time.Time) (string, error) {
	const op = "syndication.feed.RSS"

	out, err := b.feed(views, now).ToRss()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Atom — лента Atom 1.0.
func (b *Builder) Atom(views []present.View, now time.Time) (string, error) {
	const op = "syndication.feed.Atom"

	out, err := b.feed(views, now).ToAtom()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
