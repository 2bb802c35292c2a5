// Package discovery находит кандидатов на статьи у источника:
// через RSS/Atom-ленту, а при её недоступности — по ссылкам главной страницы.
package discovery

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/pkg/httpfetch"
	"github.com/pribylovaa/news-digest/internal/rss"
	"github.com/pribylovaa/news-digest/pkg/log"
)

// DefaultMaxLinks — потолок ссылок с одной главной страницы.
const DefaultMaxLinks = 100

// PageFetcher — исходящий GET (см. httpfetch.Client).
type PageFetcher interface {
	Get(ctx context.Context, url string, limit int64) (*httpfetch.Page, error)
}

// Options — настройки Discoverer. Нулевые значения заменяются дефолтами.
type Options struct {
	MaxLinks     int
	MaxPageBytes int64
	Filter       Filter
}

// Discoverer обходит источники. Каждый вызов Discover — новый обход.
type Discoverer struct {
	fetch    PageFetcher
	maxLinks int
	maxBytes int64
	filter   Filter
}

// New создаёт Discoverer.
func New(fetch PageFetcher, opts Options) *Discoverer {
	if opts.MaxLinks <= 0 {
		opts.MaxLinks = DefaultMaxLinks
	}
	if opts.Filter == nil {
		opts.Filter = NewsFilter
	}
	return &Discoverer{fetch: fetch, maxLinks: opts.MaxLinks, maxBytes: opts.MaxPageBytes, filter: opts.Filter}
}

// Discover возвращает кандидатов источника. Ошибки сети и статусы не-2xx
// не пробрасываются: результат пуст, событие пишется в лог.
func (d *Discoverer) Discover(ctx context.Context, src models.NewsSource) []models.DiscoveredLink {
	const op = "discovery.Discover"

	lg := log.Op(ctx, op, slog.String("source", src.Name))

	if src.FeedURL != nil && strings.TrimSpace(*src.FeedURL) != "" {
		feedURL := strings.TrimSpace(*src.FeedURL)
		page, err := d.fetch.Get(ctx, feedURL, d.maxBytes)
		if err == nil {
			links, perr := rss.Parse(string(page.Body))
			if perr != nil {
				lg.Warn("feed_parse_failed", slog.String("url", feedURL), slog.String("err", perr.Error()))
			}
			return d.fromFeed(feedURL, links)
		}
		lg.Warn("feed_fetch_failed", slog.String("url", feedURL), slog.String("err", err.Error()))
	}

	page, err := d.fetch.Get(ctx, src.Website, d.maxBytes)
	if err != nil {
		lg.Warn("site_fetch_failed", slog.String("url", src.Website), slog.String("err", err.Error()))
		return nil
	}

	links := d.fromHTML(src.Website, page.Body)
	lg.Debug("site_links_discovered", slog.Int("count", len(links)))
	return links
}

// fromFeed канонизирует записи ленты и удаляет дубли. Фильтр релевантности
// к лентам не применяется.
func (d *Discoverer) fromFeed(feedURL string, items []models.DiscoveredLink) []models.DiscoveredLink {
	base, _ := url.Parse(feedURL)

	seen := make(map[string]struct{}, len(items))
	out := make([]models.DiscoveredLink, 0, len(items))
	for _, it := range items {
		abs, ok := resolve(base, it.URL)
		if !ok {
			continue
		}
		c := Canonical(abs)
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, models.DiscoveredLink{URL: c, PublishedAt: it.PublishedAt})
	}
	return out
}

// fromHTML собирает same-host ссылки главной страницы.
func (d *Discoverer) fromHTML(website string, body []byte) []models.DiscoveredLink {
	base, err := url.Parse(website)
	if err != nil || base.Host == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []models.DiscoveredLink

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		abs, ok := resolve(base, href)
		if !ok || strings.Contains(abs, "#") {
			return true
		}

		u, err := url.Parse(abs)
		if err != nil || !strings.EqualFold(u.Host, base.Host) {
			return true
		}

		c := Canonical(abs)
		if _, dup := seen[c]; dup {
			return true
		}
		seen[c] = struct{}{}

		if !d.filter(c) {
			return true
		}
		out = append(out, models.DiscoveredLink{URL: c})
		return len(out) < d.maxLinks
	})

	return out
}

// resolve превращает href в абсолютный http(s) URL относительно base.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}
