// storage определяет контракты доступа к БД для news-digest.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCursor - битый/чужой page_token (курсор пагинации).
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrConflict — конфликт уникальности (news_items.url).
	ErrConflict = errors.New("conflict")
)

// NewsStorage описывает операции над models.NewsItem.
type NewsStorage interface {
	// ItemByID возвращает элемент; ErrNotFound, если его нет.
	ItemByID(ctx context.Context, id uuid.UUID) (*models.NewsItem, error)
	// ItemByURL ищет элемент по канонической ссылке; ErrNotFound, если его нет.
	ItemByURL(ctx context.Context, url string) (*models.NewsItem, error)
	// CreateQueued создаёт элемент в статусе QUEUED.
	// ErrConflict — URL уже есть; ErrNotFound — нет источника.
	CreateQueued(ctx context.Context, sourceID uuid.UUID, url string, publishedAt *time.Time) (*models.NewsItem, error)
	// SetStatus выставляет статус и текст ошибки (nil очищает).
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status, errMsg *string) error
	// SavePipelineUpdate записывает результат прогона конвейера.
	SavePipelineUpdate(ctx context.Context, id uuid.UUID, upd models.PipelineUpdate) error
	// QueuedBatch возвращает до limit id в статусе QUEUED, старые первыми.
	QueuedBatch(ctx context.Context, limit int) ([]uuid.UUID, error)
	// RequeueStale возвращает в QUEUED элементы, застрявшие в PROCESSING дольше before.
	RequeueStale(ctx context.Context, before time.Time, reason string) (int64, error)
	// ListPublic — READY и не скрытые, по эффективной дате публикации (убывание).
	// При некорректном page_token — ErrInvalidCursor.
	ListPublic(ctx context.Context, f models.ListFilter) (*models.Page, error)
	// ListAdmin — все элементы по дате создания (убывание) с фильтрами статуса.
	ListAdmin(ctx context.Context, f models.AdminFilter) (*models.Page, error)
	// UpdateItem применяет правку администратора; ErrNotFound, если элемента нет.
	UpdateItem(ctx context.Context, id uuid.UUID, e models.ItemEdit) error
	// DeleteItem удаляет элемент; ErrNotFound, если его нет.
	DeleteItem(ctx context.Context, id uuid.UUID) error
	// DeleteAllItems удаляет все элементы и возвращает их число.
	DeleteAllItems(ctx context.Context) (int64, error)
}

// SourceStorage — справочник источников.
type SourceStorage interface {
	ActiveSources(ctx context.Context) ([]models.NewsSource, error)
	// SourceByID — ErrNotFound, если источника нет.
	SourceByID(ctx context.Context, id uuid.UUID) (*models.NewsSource, error)
	// UpsertSource создаёт или обновляет источник по website.
	UpsertSource(ctx context.Context, src models.NewsSource) (*models.NewsSource, error)
}

// AuditStorage — журнал действий администраторов (только добавление).
type AuditStorage interface {
	AppendAudit(ctx context.Context, e models.AuditEntry) error
}

// Storage задаёт контракт доступа к хранилищу.
type Storage interface {
	NewsStorage
	SourceStorage
	AuditStorage
	Ping(ctx context.Context) error
	Close()
}
