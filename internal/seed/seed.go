// seed загружает справочник источников из YAML и upsert-ит его по website.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/pkg/log"
	"gopkg.in/yaml.v3"
)

// Формат файла:
//
//	sources:
//	  - name: Ministry of Foreign Affairs
//	    language: en
//	    website: https://mofa.gov.lr
//	    feed_url: https://mofa.gov.lr/feed
//	    active: true
type file struct {
	Sources []entry `yaml:"sources"`
}

type entry struct {
	Name     string `yaml:"name"`
	Language string `yaml:"language"`
	Website  string `yaml:"website"`
	FeedURL  string `yaml:"feed_url"`
	Active   *bool  `yaml:"active"`
}

// Upserter — часть хранилища, нужная для сидирования.
type Upserter interface {
	UpsertSource(ctx context.Context, src models.NewsSource) (*models.NewsSource, error)
}

// Parse читает и валидирует список источников. active по умолчанию true,
// language — "en".
func Parse(r io.Reader) ([]models.NewsSource, error) {
	const op = "seed.Parse"

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.NewsSource, 0, len(f.Sources))
	var errs []error
	for i, e := range f.Sources {
		src, err := e.toSource()
		if err != nil {
			errs = append(errs, fmt.Errorf("sources[%d]: %w", i, err))
			continue
		}
		out = append(out, src)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	return out, nil
}

func (e entry) toSource() (models.NewsSource, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return models.NewsSource{}, errors.New("name is required")
	}
	website := strings.TrimRight(strings.TrimSpace(e.Website), "/")
	if !isHTTP(website) {
		return models.NewsSource{}, fmt.Errorf("website %q must be an absolute http(s) url", e.Website)
	}

	src := models.NewsSource{
		Name:     name,
		Language: strings.TrimSpace(e.Language),
		Website:  website,
		IsActive: e.Active == nil || *e.Active,
	}
	if src.Language == "" {
		src.Language = "en"
	}
	if feed := strings.TrimSpace(e.FeedURL); feed != "" {
		if !isHTTP(feed) {
			return models.NewsSource{}, fmt.Errorf("feed_url %q must be an absolute http(s) url", e.FeedURL)
		}
		src.FeedURL = &feed
	}
	return src, nil
}

func isHTTP(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Apply upsert-ит источники по очереди и возвращает число записанных.
func Apply(ctx context.Context, st Upserter, sources []models.NewsSource) (int, error) {
	const op = "seed.Apply"

	lg := log.From(ctx)

	for i, src := range sources {
		saved, err := st.UpsertSource(ctx, src)
		if err != nil {
			return i, fmt.Errorf("%s: %s: %w", op, src.Website, err)
		}
		lg.Debug("seed_source_upserted",
			slog.String("op", op),
			slog.String("id", saved.ID.String()),
			slog.String("website", saved.Website),
		)
	}
	return len(sources), nil
}

// LoadFile — Parse + Apply для файла по пути.
func LoadFile(ctx context.Context, st Upserter, path string) (int, error) {
	const op = "seed.LoadFile"

	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	sources, err := Parse(bytes.NewReader(b))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := Apply(ctx, st, sources)
	if err != nil {
		return n, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("seed_sources_ok", slog.String("op", op), slog.String("path", path), slog.Int("sources", n))
	return n, nil
}
