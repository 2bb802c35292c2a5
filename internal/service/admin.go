package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/discovery"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/storage"
	"github.com/pribylovaa/news-digest/pkg/log"
)

// Ключи фиксированных окон: <действие>:<id администратора>.
const (
	rateIngest    = "news-ingest"
	rateSync      = "news-sync"
	rateReprocess = "news-reprocess"
)

// publishedAtLayouts — допустимые форматы publishedAt при ручном добавлении.
var publishedAtLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// requireAdmin проверяет субъекта до любых изменений состояния.
func requireAdmin(p models.Principal) error {
	if p.UserID == "" {
		return ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return ErrPermissionDenied
	}
	return nil
}

// allow применяет лимит окна. Сбой лимитера не блокирует администратора.
func (s *Service) allow(ctx context.Context, action string, p models.Principal, limit int, window time.Duration) error {
	if s.deps.Limiter == nil || limit <= 0 {
		return nil
	}

	ok, err := s.deps.Limiter.Allow(ctx, action+":"+p.UserID, limit, window)
	if err != nil {
		log.From(ctx).Warn("rate_limiter_error",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

func (s *Service) audit(ctx context.Context, p models.Principal, action models.AuditAction, entityID, detail string, metadata map[string]any) error {
	return s.storage.AppendAudit(ctx, models.AuditEntry{
		ActorUserID: p.UserID,
		Action:      action,
		EntityType:  models.AuditEntityNews,
		EntityID:    entityID,
		Detail:      detail,
		Metadata:    metadata,
	})
}

// parseID разбирает идентификатор элемента из запроса.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidArgument
	}
	return id, nil
}

// Ingest добавляет ссылку в очередь вручную.
//
// Особенности:
//   - URL канонизируется так же, как при обнаружении;
//   - уже известный URL возвращается как есть (Created=false), аудит не пишется;
//   - некорректный publishedAt игнорируется (nil).
func (s *Service) Ingest(ctx context.Context, p models.Principal, req models.IngestRequest) (*models.IngestResult, error) {
	const op = "service.admin.Ingest"

	lg := log.Op(ctx, op, slog.String("actor", p.UserID))

	if err := requireAdmin(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.allow(ctx, rateIngest, p, s.cfg.RateLimits.IngestLimit, s.cfg.RateLimits.IngestWindow); err != nil {
		lg.Warn("ingest_rate_limited")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%s: url: %w", op, ErrInvalidArgument)
	}
	sourceID, err := parseID(req.SourceID)
	if err != nil {
		return nil, fmt.Errorf("%s: sourceId: %w", op, err)
	}

	link := discovery.Canonical(req.URL)

	existing, err := s.storage.ItemByURL(ctx, link)
	switch {
	case err == nil:
		lg.Info("ingest_existing", slog.String("id", existing.ID.String()))
		return &models.IngestResult{ID: existing.ID, Status: existing.Status}, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	item, err := s.storage.CreateQueued(ctx, sourceID, link, parsePublishedAt(req.PublishedAt))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			// Параллельный запрос успел вставить тот же URL.
			existing, gerr := s.storage.ItemByURL(ctx, link)
			if gerr != nil {
				return nil, fmt.Errorf("%s: %w", op, gerr)
			}
			return &models.IngestResult{ID: existing.ID, Status: existing.Status}, nil
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: unknown source: %w", op, ErrInvalidArgument)
		}
		lg.Error("ingest_storage_error", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.deps.Metrics.ItemsIngested(1)

	if err := s.audit(ctx, p, models.AuditIngest, item.ID.String(), "Ingested "+link,
		map[string]any{"sourceId": sourceID.String()}); err != nil {
		return nil, fmt.Errorf("%s: audit: %w", op, err)
	}

	lg.Info("ingest_created", slog.String("id", item.ID.String()), slog.String("url", link))
	return &models.IngestResult{ID: item.ID, Status: item.Status, Created: true}, nil
}

func parsePublishedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// Sync — ручной запуск оркестратора администратором.
func (s *Service) Sync(ctx context.Context, p models.Principal) (*models.IngestReport, error) {
	const op = "service.admin.Sync"

	if err := requireAdmin(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.allow(ctx, rateSync, p, s.cfg.RateLimits.SyncLimit, s.cfg.RateLimits.SyncWindow); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report, err := s.RunIngest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.audit(ctx, p, models.AuditSync, models.AuditEntityAll,
		fmt.Sprintf("Sync ingested %d, processed %d", report.Ingested, len(report.Processed)),
		map[string]any{"ingested": report.Ingested, "processed": len(report.Processed)}); err != nil {
		return nil, fmt.Errorf("%s: audit: %w", op, err)
	}

	return report, nil
}

// CronRun — запуск оркестратора внешним планировщиком по bearer-секрету.
// Подходит любой из настроенных секретов; без секретов вызов запрещён.
func (s *Service) CronRun(ctx context.Context, token string) (*models.IngestReport, error) {
	const op = "service.admin.CronRun"

	if !s.cronAuthorized(token) {
		log.From(ctx).Warn("cron_unauthorized", slog.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	report, err := s.RunIngest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return report, nil
}

func (s *Service) cronAuthorized(token string) bool {
	if token == "" {
		return false
	}
	for _, secret := range s.cfg.Cron.Secrets() {
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1 {
			return true
		}
	}
	return false
}

// Reprocess возвращает элемент в очередь и сразу прогоняет конвейер.
func (s *Service) Reprocess(ctx context.Context, p models.Principal, rawID string) (*models.ProcessResult, error) {
	const op = "service.admin.Reprocess"

	if err := requireAdmin(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.allow(ctx, rateReprocess, p, s.cfg.RateLimits.ReprocessLimit, s.cfg.RateLimits.ReprocessWindow); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := parseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if err := s.storage.SetStatus(ctx, id, models.StatusQueued, nil); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.audit(ctx, p, models.AuditReprocess, id.String(), "Reprocess requested", nil); err != nil {
		return nil, fmt.Errorf("%s: audit: %w", op, err)
	}

	res := s.ProcessItem(ctx, id)
	return &res, nil
}

// Edit применяет правку администратора.
//
// Особенности:
//   - UseAI сбрасывает все override-поля (теги -> пустой массив);
//   - пустые строки становятся null, пустые теги отбрасываются;
//   - NEWS_EDIT пишется всегда, NEWS_HIDE/UNHIDE и NEWS_FEATURE/UNFEATURE только при реальном изменении.
func (s *Service) Edit(ctx context.Context, p models.Principal, rawID string, req models.EditRequest) error {
	const op = "service.admin.Edit"

	if err := requireAdmin(p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	id, err := parseID(rawID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	existing, err := s.storage.ItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	edit := buildEdit(req, p.UserID, s.now())

	if err := s.storage.UpdateItem(ctx, id, edit); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.audit(ctx, p, models.AuditEdit, id.String(), "News item edited",
		map[string]any{"fields": edit.Fields()}); err != nil {
		return fmt.Errorf("%s: audit: %w", op, err)
	}

	if req.IsHidden != nil && *req.IsHidden != existing.IsHidden {
		action, detail := models.AuditUnhide, "News unhidden"
		if *req.IsHidden {
			action, detail = models.AuditHide, "News hidden"
		}
		if err := s.audit(ctx, p, action, id.String(), detail, nil); err != nil {
			return fmt.Errorf("%s: audit: %w", op, err)
		}
	}

	if req.IsFeatured != nil && *req.IsFeatured != existing.IsFeatured {
		action, detail := models.AuditUnfeature, "News unfeatured"
		if *req.IsFeatured {
			action, detail = models.AuditFeature, "News featured"
		}
		if err := s.audit(ctx, p, action, id.String(), detail, nil); err != nil {
			return fmt.Errorf("%s: audit: %w", op, err)
		}
	}

	log.From(ctx).Info("edit_ok",
		slog.String("op", op),
		slog.String("id", id.String()),
		slog.Any("fields", edit.Fields()),
	)
	return nil
}

// buildEdit нормализует запрос в models.ItemEdit.
func buildEdit(req models.EditRequest, actor string, now time.Time) models.ItemEdit {
	edit := models.ItemEdit{
		IsHidden:   req.IsHidden,
		IsFeatured: req.IsFeatured,
		EditorNote: blankToNull(req.EditorNote),
		EditedBy:   actor,
		EditedAt:   now,
	}

	if req.UseAI {
		edit.TitleOverride = models.Clear[string]()
		edit.SummaryOverrideZh = models.Clear[string]()
		edit.WhyItMattersOverride = models.Clear[string]()
		edit.TagsOverride = models.SetTo([]string{})
		edit.ImageOverrideURL = models.Clear[string]()
		edit.PublishedAtOverride = models.Clear[time.Time]()
		return edit
	}

	edit.TitleOverride = blankToNull(req.TitleOverride)
	edit.SummaryOverrideZh = blankToNull(req.SummaryOverrideZh)
	edit.WhyItMattersOverride = blankToNull(req.WhyItMattersOverride)
	edit.ImageOverrideURL = blankToNull(req.ImageOverrideURL)
	edit.PublishedAtOverride = req.PublishedAtOverride

	if req.TagsOverride.Set {
		tags := []string{}
		if req.TagsOverride.Value != nil {
			for _, t := range *req.TagsOverride.Value {
				if t != "" {
					tags = append(tags, t)
				}
			}
		}
		edit.TagsOverride = models.SetTo(tags)
	}

	return edit
}

func blankToNull(p models.Patch[string]) models.Patch[string] {
	if p.Set && p.Value != nil && *p.Value == "" {
		return models.Clear[string]()
	}
	return p
}

// VisibilityResult — ответ на переключение видимости.
type VisibilityResult struct {
	ID       uuid.UUID
	IsHidden bool
	Status   *models.Status
}

// SetVisibility скрывает или показывает элемент; опционально меняет статус
// (только READY или FAILED). Аудит пишется на каждый вызов.
func (s *Service) SetVisibility(ctx context.Context, p models.Principal, rawID string, hidden bool, status *models.Status) (*VisibilityResult, error) {
	const op = "service.admin.SetVisibility"

	if err := requireAdmin(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := parseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s: id: %w", op, err)
	}
	if status != nil && *status != models.StatusReady && *status != models.StatusFailed {
		return nil, fmt.Errorf("%s: status: %w", op, ErrInvalidArgument)
	}

	edit := models.ItemEdit{
		IsHidden: &hidden,
		Status:   status,
		EditedBy: p.UserID,
		EditedAt: s.now(),
	}
	if err := s.storage.UpdateItem(ctx, id, edit); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	action, detail := models.AuditUnhide, "News unhidden"
	if hidden {
		action, detail = models.AuditHide, "News hidden"
	}
	if err := s.audit(ctx, p, action, id.String(), detail, nil); err != nil {
		return nil, fmt.Errorf("%s: audit: %w", op, err)
	}

	return &VisibilityResult{ID: id, IsHidden: hidden, Status: status}, nil
}

// Delete удаляет один элемент.
func (s *Service) Delete(ctx context.Context, p models.Principal, rawID string) (uuid.UUID, error) {
	const op = "service.admin.Delete"

	if err := requireAdmin(p); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := parseID(rawID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: id: %w", op, err)
	}

	if err := s.storage.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.audit(ctx, p, models.AuditDelete, id.String(), "News deleted", nil); err != nil {
		return uuid.Nil, fmt.Errorf("%s: audit: %w", op, err)
	}
	return id, nil
}

// DeleteAll удаляет все элементы. В аудите entity_id = "ALL".
func (s *Service) DeleteAll(ctx context.Context, p models.Principal) (int64, error) {
	const op = "service.admin.DeleteAll"

	if err := requireAdmin(p); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.storage.DeleteAllItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.audit(ctx, p, models.AuditDeleteAll, models.AuditEntityAll, "All news items deleted",
		map[string]any{"deleted": n}); err != nil {
		return 0, fmt.Errorf("%s: audit: %w", op, err)
	}

	log.From(ctx).Warn("delete_all_ok", slog.String("op", op), slog.String("actor", p.UserID), slog.Int64("deleted", n))
	return n, nil
}

// AdminList — список для модерации: все статусы, включая скрытые.
// Stuck выбирает PROCESSING старше аренды cfg.Pipeline.ProcessingLease.
func (s *Service) AdminList(ctx context.Context, p models.Principal, f models.AdminFilter) (*models.Page, error) {
	const op = "service.admin.AdminList"

	if err := requireAdmin(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, fmt.Errorf("%s: status: %w", op, ErrInvalidArgument)
	}
	if f.Stuck {
		f.StuckBefore = s.now().Add(-s.cfg.Pipeline.ProcessingLease)
	}
	f.Limit = s.normalizeLimit(f.Limit)

	page, err := s.storage.ListAdmin(ctx, f)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCursor)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}
