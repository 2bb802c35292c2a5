// http собирает REST-интерфейс news-digest: публичная лента, админка и cron-триггер.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/news-digest/internal/metrics"
	"github.com/pribylovaa/news-digest/internal/transport/http/handlers"
	"github.com/pribylovaa/news-digest/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	Verifier middleware.Verifier
	Metrics  *metrics.Metrics
	// CronTimeout — бюджет /cron/news и /admin/news/sync (прогон оркестратора дольше обычного запроса).
	CronTimeout time.Duration
	BasePath    string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования
		middleware.Logging(opts.Logger),
		middleware.Metrics(opts.Metrics),
		middleware.AuthBearer(opts.Verifier),
	)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, opts)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, opts)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, opts Options) {
	// Долгие прогоны оркестратора.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(opts.CronTimeout))

		r.Post("/cron/news", h.Cron)
		r.Get("/cron/news", h.Cron)
		r.Post("/admin/news/sync", h.Sync)
		r.Post("/admin/news/reprocess/{id}", h.Reprocess)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(opts.Timeout))

		// public
		r.Get("/news", h.ListNews)
		r.Get("/news/sources", h.ListSources)
		r.Get("/news/feed.xml", h.FeedRSS)
		r.Get("/news/feed.atom", h.FeedAtom)
		r.Get("/news/{id}", h.GetNewsByID)
		r.Get("/sitemap.xml", h.Sitemap)

		// admin
		r.Get("/admin/news", h.AdminList)
		r.Post("/admin/news/ingest", h.Ingest)
		r.Post("/admin/news/visibility", h.Visibility)
		r.Post("/admin/news/delete", h.Delete)
		r.Post("/admin/news/delete-all", h.DeleteAll)
		r.Patch("/admin/news/{id}", h.Edit)
	})
}
