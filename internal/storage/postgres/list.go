package postgres

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/storage"
)

// effectiveDate — эффективная дата публикации (override ?? автоматическая ?? создание).
const effectiveDate = `COALESCE(n.published_at_override, n.published_at, n.created_at)`

// cursor — ключ keyset-пагинации: (дата сортировки, created_at, id).
type cursor struct {
	At      time.Time
	Created time.Time
	ID      uuid.UUID
}

// ListPublic возвращает страницу публичной ленты.
// Сортировка фиксирована: эффективная дата DESC, created_at DESC, id DESC.
// page_token — непрозрачная строка (base64url).
func (s *Storage) ListPublic(ctx context.Context, f models.ListFilter) (*models.Page, error) {
	const op = "storage.postgres.ListPublic"

	q := psql.Select(itemColumns).From(itemFrom).
		Where("n.status = ?", string(models.StatusReady)).
		Where("NOT n.is_hidden")

	if f.SourceID != nil {
		q = q.Where("n.source_id = ?", *f.SourceID)
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		q = q.Where("(? = ANY(n.tags) OR ? = ANY(n.tags_override))", tag, tag)
	}
	if f.Start != nil {
		q = q.Where(effectiveDate+" >= ?", f.Start.UTC())
	}
	if f.End != nil {
		q = q.Where(effectiveDate+" <= ?", f.End.UTC())
	}
	if f.PageToken != "" {
		cur, err := decodePageToken(f.PageToken)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidCursor)
		}
		q = q.Where("("+effectiveDate+", n.created_at, n.id) < (?, ?, ?)", cur.At, cur.Created, cur.ID)
	}

	q = q.OrderBy(effectiveDate+" DESC", "n.created_at DESC", "n.id DESC")

	return s.page(ctx, op, q, f.Limit, func(it models.NewsItem) cursor {
		return cursor{At: it.EffectivePublishedAt(), Created: it.CreatedAt, ID: it.ID}
	})
}

// ListAdmin возвращает страницу для модерации: created_at DESC, id DESC.
func (s *Storage) ListAdmin(ctx context.Context, f models.AdminFilter) (*models.Page, error) {
	const op = "storage.postgres.ListAdmin"

	q := psql.Select(itemColumns).From(itemFrom)

	if f.Status != nil {
		q = q.Where("n.status = ?", string(*f.Status))
	}
	if f.Stuck {
		q = q.Where("n.status = ?", string(models.StatusProcessing)).
			Where("n.updated_at < ?", f.StuckBefore.UTC())
	}
	if f.PageToken != "" {
		cur, err := decodePageToken(f.PageToken)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidCursor)
		}
		q = q.Where("(n.created_at, n.id) < (?, ?)", cur.Created, cur.ID)
	}

	q = q.OrderBy("n.created_at DESC", "n.id DESC")

	return s.page(ctx, op, q, f.Limit, func(it models.NewsItem) cursor {
		return cursor{At: it.CreatedAt, Created: it.CreatedAt, ID: it.ID}
	})
}

// page выполняет запрос с limit+1 и формирует токен продолжения,
// только если за страницей есть ещё строки.
func (s *Storage) page(ctx context.Context, op string, q sq.SelectBuilder, limit int32, key func(models.NewsItem) cursor) (*models.Page, error) {
	if limit <= 0 {
		// Защита от нуля/отрицательного значения.
		limit = 1
	}

	query, args, err := q.Limit(uint64(limit) + 1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var page models.Page
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		page.Items = append(page.Items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	if len(page.Items) > int(limit) {
		page.Items = page.Items[:limit]
		page.NextPageToken = encodePageToken(key(page.Items[len(page.Items)-1]))
	}
	return &page, nil
}

// encodePageToken кодирует ключ страницы в непрозрачный токен для клиента.
func encodePageToken(c cursor) string {
	raw := fmt.Sprintf("%d|%d|%s", c.At.UTC().UnixNano(), c.Created.UTC().UnixNano(), c.ID.String())
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodePageToken декодирует токен обратно в ключ.
func decodePageToken(token string) (cursor, error) {
	res, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return cursor{}, err
	}

	parts := strings.SplitN(string(res), "|", 3)
	if len(parts) != 3 {
		return cursor{}, fmt.Errorf("bad parts")
	}

	at, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return cursor{}, err
	}
	created, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return cursor{}, err
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return cursor{}, err
	}

	return cursor{At: time.Unix(0, at).UTC(), Created: time.Unix(0, created).UTC(), ID: id}, nil
}
