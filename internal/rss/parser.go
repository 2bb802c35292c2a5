// Package rss разбирает RSS 2.0 / Atom ленты в кандидатов на статьи.
package rss

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/pribylovaa/news-digest/internal/models"
)

// ErrUnparseable — документ не распознан как RSS или Atom.
var ErrUnparseable = errors.New("rss: unparseable feed")

// Parse разбирает документ ленты.
//
// Особенности:
//   - порядок выбора ссылки: Atom href / <link>, прочие ссылки записи, guid/id;
//   - дата: pubDate (RSS), published, затем updated (Atom); нераспознанная -> nil;
//   - записи без пригодной ссылки отбрасываются;
//   - нераспознанный документ -> пустой список и ErrUnparseable.
func Parse(xmlText string) ([]models.DiscoveredLink, error) {
	const op = "rss.Parse"

	feed, err := gofeed.NewParser().ParseString(xmlText)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnparseable, err)
	}

	out := make([]models.DiscoveredLink, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}

		link := pickLink(it)
		if link == "" {
			continue
		}

		out = append(out, models.DiscoveredLink{URL: link, PublishedAt: pickDate(it)})
	}

	return out, nil
}

func pickLink(it *gofeed.Item) string {
	if l := strings.TrimSpace(it.Link); l != "" {
		return l
	}
	for _, l := range it.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return strings.TrimSpace(it.GUID)
}

func pickDate(it *gofeed.Item) *time.Time {
	for _, t := range []*time.Time{it.PublishedParsed, it.UpdatedParsed} {
		if t != nil && !t.IsZero() {
			u := t.UTC()
			return &u
		}
	}
	return nil
}
