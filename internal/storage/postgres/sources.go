package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/storage"
)

const sourceColumns = `id, name, language, website, feed_url, is_active, created_at`

func scanSource(row scanner) (*models.NewsSource, error) {
	var src models.NewsSource
	if err := row.Scan(&src.ID, &src.Name, &src.Language, &src.Website, &src.FeedURL, &src.IsActive, &src.CreatedAt); err != nil {
		return nil, err
	}
	src.CreatedAt = src.CreatedAt.UTC()
	return &src, nil
}

// ActiveSources возвращает активные источники в порядке создания.
func (s *Storage) ActiveSources(ctx context.Context) ([]models.NewsSource, error) {
	const op = "storage.postgres.ActiveSources"

	rows, err := s.db.Query(ctx, `SELECT `+sourceColumns+` FROM news_sources WHERE is_active ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.NewsSource
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		out = append(out, *src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

// SourceByID возвращает источник по идентификатору.
func (s *Storage) SourceByID(ctx context.Context, id uuid.UUID) (*models.NewsSource, error) {
	const op = "storage.postgres.SourceByID"

	src, err := scanSource(s.db.QueryRow(ctx, `SELECT `+sourceColumns+` FROM news_sources WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return src, nil
}

// UpsertSource создаёт источник или обновляет существующий с тем же website.
func (s *Storage) UpsertSource(ctx context.Context, in models.NewsSource) (*models.NewsSource, error) {
	const op = "storage.postgres.UpsertSource"

	src, err := scanSource(s.db.QueryRow(ctx, `
	INSERT INTO news_sources (name, language, website, feed_url, is_active)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (website) DO UPDATE
	SET name = EXCLUDED.name,
		language = EXCLUDED.language,
		feed_url = EXCLUDED.feed_url,
		is_active = EXCLUDED.is_active
	RETURNING `+sourceColumns,
		in.Name, in.Language, in.Website, in.FeedURL, in.IsActive))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return src, nil
}
