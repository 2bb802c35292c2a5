// service содержит бизнес-логику news-digest: конвейер обработки,
// оркестратор приёма, админские операции и публичную выдачу.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/news-digest/internal/config"
	"github.com/pribylovaa/news-digest/internal/metrics"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/pkg/httpfetch"
	"github.com/pribylovaa/news-digest/internal/storage"
)

var (
	// ErrNotFound — сущность отсутствует.
	// Транспорт: 404.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCursor — битый/чужой page_token.
	// Транспорт: 400.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrInvalidArgument - некорректные входные аргументы.
	// Транспорт: 400.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated — нет или не прошёл проверку токен.
	// Транспорт: 401.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied — пользователь не администратор.
	// Транспорт: 403.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrRateLimited — превышен лимит окна.
	// Транспорт: 429.
	ErrRateLimited = errors.New("too many requests")
)

// Discoverer находит кандидатов на статьи у источника.
type Discoverer interface {
	Discover(ctx context.Context, src models.NewsSource) []models.DiscoveredLink
}

// PageFetcher загружает страницу статьи.
type PageFetcher interface {
	Get(ctx context.Context, url string, limit int64) (*httpfetch.Page, error)
}

// Summarizer строит сводку по тексту статьи.
type Summarizer interface {
	Summarize(ctx context.Context, excerpt string, title *string) (*models.Summary, error)
}

// ImageArchiver копирует картинки в объектное хранилище.
type ImageArchiver interface {
	Archive(ctx context.Context, sourceURL, targetName string) *string
	PublicURL(path *string) *string
}

// Limiter — фиксированное окно: true, если вызов укладывается в лимит.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Deps — внешние зависимости сервиса. Nil-поля допустимы там,
// где соответствующая функциональность опциональна (Images, Limiter, Metrics).
type Deps struct {
	Discoverer Discoverer
	Fetcher    PageFetcher
	Summarizer Summarizer
	Images     ImageArchiver
	Limiter    Limiter
	Metrics    *metrics.Metrics
	// Now — источник времени; nil -> time.Now.
	Now func() time.Time
}

// Service — бизнес-логика news-digest.
type Service struct {
	storage storage.Storage
	cfg     config.Config
	deps    Deps
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, cfg config.Config, deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		storage: storage,
		cfg:     cfg,
		deps:    deps,
	}
}

func (s *Service) now() time.Time {
	return s.deps.Now().UTC()
}

// publicURL — ссылка на архивированную картинку или nil.
func (s *Service) publicURL(p *string) *string {
	if s.deps.Images == nil {
		return nil
	}
	return s.deps.Images.PublicURL(p)
}
