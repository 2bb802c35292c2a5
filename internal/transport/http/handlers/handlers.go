package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/present"
	"github.com/pribylovaa/news-digest/internal/service"
	apierrors "github.com/pribylovaa/news-digest/internal/transport/http/errors"
)

// NewsService — операции сервисного слоя, которые вызывают хендлеры.
type NewsService interface {
	ListNews(ctx context.Context, f models.ListFilter) (*models.Page, error)
	NewsByID(ctx context.Context, rawID string) (*models.NewsItem, error)
	Sources(ctx context.Context) ([]models.NewsSource, error)
	FeedItems(ctx context.Context) ([]present.View, error)
	SitemapItems(ctx context.Context) ([]present.View, error)
	View(it models.NewsItem) present.View

	Ingest(ctx context.Context, p models.Principal, req models.IngestRequest) (*models.IngestResult, error)
	Sync(ctx context.Context, p models.Principal) (*models.IngestReport, error)
	CronRun(ctx context.Context, token string) (*models.IngestReport, error)
	Reprocess(ctx context.Context, p models.Principal, rawID string) (*models.ProcessResult, error)
	Edit(ctx context.Context, p models.Principal, rawID string, req models.EditRequest) error
	SetVisibility(ctx context.Context, p models.Principal, rawID string, hidden bool, status *models.Status) (*service.VisibilityResult, error)
	Delete(ctx context.Context, p models.Principal, rawID string) (uuid.UUID, error)
	DeleteAll(ctx context.Context, p models.Principal) (int64, error)
	AdminList(ctx context.Context, p models.Principal, f models.AdminFilter) (*models.Page, error)
}

// Syndicator рендерит ленты и sitemap.
type Syndicator interface {
	RSS(views []present.View, now time.Time) (string, error)
	Atom(views []present.View, now time.Time) (string, error)
	Sitemap(views []present.View, now time.Time) ([]byte, error)
}

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	svc   NewsService
	feeds Syndicator
	// adminPath — куда возвращать HTML-формы без Referer.
	adminPath string
	now       func() time.Time
}

// New создаёт Handlers.
func New(svc NewsService, feeds Syndicator, adminPath string) *Handlers {
	if adminPath == "" {
		adminPath = "/zh/admin/news"
	}
	return &Handlers{svc: svc, feeds: feeds, adminPath: adminPath, now: time.Now}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// isForm сообщает, что тело пришло из HTML-формы, а не JSON.
func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// formValues разбирает тело формы любого из двух типов.
func formValues(r *http.Request) (url.Values, error) {
	if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
		return nil, err
	}
	return r.PostForm, nil
}

// redirectBack — ответ на отправку HTML-формы: 303 на Referer или на админскую ленту.
func (h *Handlers) redirectBack(w http.ResponseWriter, r *http.Request) {
	target := h.adminPath
	if ref := r.Referer(); ref != "" {
		target = ref
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func invalidArgument() error { return apierrors.ErrInvalidArgument }
