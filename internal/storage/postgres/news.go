package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/storage"
)

const itemColumns = `n.id, n.source_id, n.url,
	n.title, n.published_at, n.fetched_at, n.og_image_url, n.raw_excerpt, n.content_hash,
	n.summary_zh, n.why_it_matters, n.tags, n.risk_flags, n.image_path,
	n.title_override, n.published_at_override, n.summary_override_zh, n.why_it_matters_override,
	n.tags_override, n.image_override_url,
	n.status, n.error, n.is_hidden, n.is_featured, n.editor_note, n.edited_by_user_id, n.edited_at,
	n.created_at, n.updated_at, s.name`

const itemFrom = `news_items n JOIN news_sources s ON s.id = n.source_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*models.NewsItem, error) {
	var (
		it     models.NewsItem
		status string
	)
	err := row.Scan(
		&it.ID, &it.SourceID, &it.URL,
		&it.Title, &it.PublishedAt, &it.FetchedAt, &it.OGImageURL, &it.RawExcerpt, &it.ContentHash,
		&it.SummaryZh, &it.WhyItMatters, &it.Tags, &it.RiskFlags, &it.ImagePath,
		&it.TitleOverride, &it.PublishedAtOverride, &it.SummaryOverrideZh, &it.WhyItMattersOverride,
		&it.TagsOverride, &it.ImageOverrideURL,
		&status, &it.Error, &it.IsHidden, &it.IsFeatured, &it.EditorNote, &it.EditedByUserID, &it.EditedAt,
		&it.CreatedAt, &it.UpdatedAt, &it.SourceName,
	)
	if err != nil {
		return nil, err
	}
	it.Status = models.Status(status)

	// Нормализация в UTC.
	for _, t := range []*time.Time{it.PublishedAt, it.FetchedAt, it.PublishedAtOverride, it.EditedAt} {
		if t != nil {
			*t = t.UTC()
		}
	}
	it.CreatedAt = it.CreatedAt.UTC()
	it.UpdatedAt = it.UpdatedAt.UTC()

	return &it, nil
}

// ItemByID возвращает элемент по идентификатору.
func (s *Storage) ItemByID(ctx context.Context, id uuid.UUID) (*models.NewsItem, error) {
	const op = "storage.postgres.ItemByID"

	it, err := scanItem(s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM `+itemFrom+` WHERE n.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

// ItemByURL возвращает элемент по канонической ссылке.
func (s *Storage) ItemByURL(ctx context.Context, url string) (*models.NewsItem, error) {
	const op = "storage.postgres.ItemByURL"

	it, err := scanItem(s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM `+itemFrom+` WHERE n.url = $1`, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

// CreateQueued вставляет новый элемент. Дубликат URL -> storage.ErrConflict.
func (s *Storage) CreateQueued(ctx context.Context, sourceID uuid.UUID, url string, publishedAt *time.Time) (*models.NewsItem, error) {
	const op = "storage.postgres.CreateQueued"

	var id uuid.UUID
	err := s.db.QueryRow(ctx, `
	INSERT INTO news_items (source_id, url, published_at, status)
	VALUES ($1, $2, $3, 'QUEUED')
	RETURNING id
	`, sourceID, url, utcPtr(publishedAt)).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapPgError(err))
	}

	return s.ItemByID(ctx, id)
}

// SetStatus меняет статус и текст ошибки.
func (s *Storage) SetStatus(ctx context.Context, id uuid.UUID, status models.Status, errMsg *string) error {
	const op = "storage.postgres.SetStatus"

	tag, err := s.db.Exec(ctx, `
	UPDATE news_items SET status = $2, error = $3, updated_at = now()
	WHERE id = $1
	`, id, string(status), errMsg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// SavePipelineUpdate записывает результат конвейера одной командой.
// Извлечённые поля пишутся всегда; хэш, сводка и путь к картинке — только если заданы.
func (s *Storage) SavePipelineUpdate(ctx context.Context, id uuid.UUID, upd models.PipelineUpdate) error {
	const op = "storage.postgres.SavePipelineUpdate"

	ub := psql.Update("news_items").
		Set("title", upd.Title).
		Set("published_at", utcPtr(upd.PublishedAt)).
		Set("fetched_at", upd.FetchedAt.UTC()).
		Set("og_image_url", upd.OGImageURL).
		Set("raw_excerpt", upd.RawExcerpt).
		Set("status", string(upd.Status)).
		Set("error", upd.Error).
		Set("updated_at", sq.Expr("now()"))

	if upd.ContentHash != nil {
		ub = ub.Set("content_hash", *upd.ContentHash)
	}
	if sm := upd.Summary; sm != nil {
		ub = ub.
			Set("summary_zh", sm.Encode()).
			Set("why_it_matters", sm.WhyItMatters).
			Set("tags", nonNil(sm.Tags)).
			Set("risk_flags", nonNil(sm.RiskFlags))
	}
	if upd.ImagePath != nil {
		ub = ub.Set("image_path", *upd.ImagePath)
	}

	query, args, err := ub.Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("%s: build: %w", op, err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// QueuedBatch — очередь FIFO по created_at.
func (s *Storage) QueuedBatch(ctx context.Context, limit int) ([]uuid.UUID, error) {
	const op = "storage.postgres.QueuedBatch"

	rows, err := s.db.Query(ctx, `
	SELECT id FROM news_items
	WHERE status = 'QUEUED'
	ORDER BY created_at ASC, id ASC
	LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// RequeueStale переводит PROCESSING, не обновлявшиеся с before, обратно в QUEUED.
func (s *Storage) RequeueStale(ctx context.Context, before time.Time, reason string) (int64, error) {
	const op = "storage.postgres.RequeueStale"

	tag, err := s.db.Exec(ctx, `
	UPDATE news_items SET status = 'QUEUED', error = $2, updated_at = now()
	WHERE status = 'PROCESSING' AND updated_at < $1
	`, before.UTC(), reason)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}

// UpdateItem применяет только заданные поля правки.
func (s *Storage) UpdateItem(ctx context.Context, id uuid.UUID, e models.ItemEdit) error {
	const op = "storage.postgres.UpdateItem"

	ub := psql.Update("news_items").
		Set("edited_by_user_id", e.EditedBy).
		Set("edited_at", e.EditedAt.UTC()).
		Set("updated_at", sq.Expr("now()"))

	if e.TitleOverride.Set {
		ub = ub.Set("title_override", e.TitleOverride.Value)
	}
	if e.PublishedAtOverride.Set {
		ub = ub.Set("published_at_override", utcPtr(e.PublishedAtOverride.Value))
	}
	if e.SummaryOverrideZh.Set {
		ub = ub.Set("summary_override_zh", e.SummaryOverrideZh.Value)
	}
	if e.WhyItMattersOverride.Set {
		ub = ub.Set("why_it_matters_override", e.WhyItMattersOverride.Value)
	}
	if e.TagsOverride.Set {
		var tags []string
		if e.TagsOverride.Value != nil {
			tags = *e.TagsOverride.Value
		}
		ub = ub.Set("tags_override", nonNil(tags))
	}
	if e.ImageOverrideURL.Set {
		ub = ub.Set("image_override_url", e.ImageOverrideURL.Value)
	}
	if e.EditorNote.Set {
		ub = ub.Set("editor_note", e.EditorNote.Value)
	}
	if e.IsHidden != nil {
		ub = ub.Set("is_hidden", *e.IsHidden)
	}
	if e.IsFeatured != nil {
		ub = ub.Set("is_featured", *e.IsFeatured)
	}
	if e.Status != nil {
		ub = ub.Set("status", string(*e.Status))
	}

	query, args, err := ub.Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("%s: build: %w", op, err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// DeleteItem удаляет элемент.
func (s *Storage) DeleteItem(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteItem"

	tag, err := s.db.Exec(ctx, `DELETE FROM news_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// DeleteAllItems удаляет все элементы.
func (s *Storage) DeleteAllItems(ctx context.Context) (int64, error) {
	const op = "storage.postgres.DeleteAllItems"

	tag, err := s.db.Exec(ctx, `DELETE FROM news_items`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
