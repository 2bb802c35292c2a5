package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/present"
	"github.com/pribylovaa/news-digest/internal/storage"
	"github.com/pribylovaa/news-digest/pkg/log"
)

// sitemapCap — верхняя граница адресов в одном sitemap.
const sitemapCap = 50000

// View — эффективное представление элемента с учётом публичных ссылок на картинки.
func (s *Service) View(it models.NewsItem) present.View {
	return present.Effective(it, s.publicURL)
}

// normalizeLimit приводит limit к [1, Max]; 0 и меньше -> Default.
func (s *Service) normalizeLimit(limit int32) int32 {
	if limit <= 0 {
		limit = s.cfg.Limits.Default
	}
	if s.cfg.Limits.Max > 0 && limit > s.cfg.Limits.Max {
		limit = s.cfg.Limits.Max
	}
	return limit
}

// ListNews возвращает страницу публичной ленты с нормализацией лимита по конфигу.
//
// Правила нормализации:
// - limit <= 0 -> cfg.Limits.Default;
// - limit > max -> cfg.Limits.Max;
// - start > end -> ErrInvalidArgument.
//
// Ошибки:
// - ErrInvalidCursor — битый/чужой page_token (маппинг storage.ErrInvalidCursor);
// - прочие ошибки стораджа — обёрнутые и прокинуты наверх.
func (s *Service) ListNews(ctx context.Context, f models.ListFilter) (*models.Page, error) {
	const op = "service.queries.ListNews"

	lg := log.From(ctx)
	lg.Info("list_news_request",
		slog.String("op", op),
		slog.Int("limit", int(f.Limit)),
		slog.Bool("has_page_token", f.PageToken != ""),
	)

	if f.Start != nil && f.End != nil && f.Start.After(*f.End) {
		return nil, fmt.Errorf("%s: start after end: %w", op, ErrInvalidArgument)
	}
	f.Tag = strings.TrimSpace(f.Tag)
	f.Limit = s.normalizeLimit(f.Limit)

	page, err := s.storage.ListPublic(ctx, f)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			lg.Warn("list_news_invalid_cursor",
				slog.String("op", op),
			)

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCursor)
		}

		lg.Error("list_news_storage_error",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("list_news_ok",
		slog.String("op", op),
		slog.Int("items", len(page.Items)),
		slog.Bool("has_next_page", page.NextPageToken != ""),
	)

	return page, nil
}

// NewsByID возвращает опубликованный элемент.
//
// Ошибки:
// - ErrNotFound — записи нет, она скрыта или не в статусе READY,
// а также при невалидном UUID;
// - прочие ошибки стораджа — обёрнутые и прокинуты наверх.
func (s *Service) NewsByID(ctx context.Context, rawID string) (*models.NewsItem, error) {
	const op = "service.queries.NewsByID"

	lg := log.From(ctx)

	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	item, err := s.storage.ItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("news_by_id_not_found",
				slog.String("op", op),
				slog.String("id", rawID),
			)

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("news_by_id_storage_error",
			slog.String("op", op),
			slog.String("id", rawID),
			slog.String("err", err.Error()),
		)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if item.IsHidden || item.Status != models.StatusReady {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return item, nil
}

// Sources возвращает активные источники.
func (s *Service) Sources(ctx context.Context) ([]models.NewsSource, error) {
	const op = "service.queries.Sources"

	sources, err := s.storage.ActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sources, nil
}

// FeedItems — последние публичные элементы для RSS/Atom.
func (s *Service) FeedItems(ctx context.Context) ([]present.View, error) {
	const op = "service.queries.FeedItems"

	size := s.cfg.Site.FeedSize
	if size <= 0 {
		size = s.cfg.Limits.Default
	}

	page, err := s.storage.ListPublic(ctx, models.ListFilter{Limit: size})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]present.View, 0, len(page.Items))
	for _, it := range page.Items {
		out = append(out, s.View(it))
	}
	return out, nil
}

// SitemapItems обходит всю публичную ленту страницами по cfg.Limits.Max.
func (s *Service) SitemapItems(ctx context.Context) ([]present.View, error) {
	const op = "service.queries.SitemapItems"

	f := models.ListFilter{Limit: s.normalizeLimit(s.cfg.Limits.Max)}
	var out []present.View

	for {
		page, err := s.storage.ListPublic(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, it := range page.Items {
			out = append(out, s.View(it))
		}
		if page.NextPageToken == "" || len(out) >= sitemapCap {
			break
		}
		f.PageToken = page.NextPageToken
	}

	if len(out) > sitemapCap {
		out = out[:sitemapCap]
	}
	return out, nil
}
