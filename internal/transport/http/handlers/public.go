package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/models"
	apierrors "github.com/pribylovaa/news-digest/internal/transport/http/errors"
)

// ListNews — GET /news?source=&tag=&start=&end=&limit=&page_token=.
func (h *Handlers) ListNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f models.ListFilter

	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			apierrors.WriteError(w, r, invalidArgument())
			return
		}
		f.Limit = int32(n)
	}

	if v := strings.TrimSpace(q.Get("source")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			apierrors.WriteError(w, r, invalidArgument())
			return
		}
		f.SourceID = &id
	}

	var ok bool
	if f.Start, ok = parseDate(q.Get("start"), false); !ok {
		apierrors.WriteError(w, r, invalidArgument())
		return
	}
	if f.End, ok = parseDate(q.Get("end"), true); !ok {
		apierrors.WriteError(w, r, invalidArgument())
		return
	}

	f.Tag = q.Get("tag")
	f.PageToken = q.Get("page_token")

	page, err := h.svc.ListNews(r.Context(), f)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := NewsListResponse{Items: make([]NewsDTO, 0, len(page.Items)), NextPageToken: page.NextPageToken}
	for _, it := range page.Items {
		out.Items = append(out.Items, newsFromView(h.svc.View(it)))
	}
	writeJSON(w, http.StatusOK, out)
}

// parseDate принимает RFC3339 или YYYY-MM-DD. Дата без времени как конец
// диапазона включает весь день.
func parseDate(raw string, endOfDay bool) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}

// GetNewsByID — GET /news/{id}.
func (h *Handlers) GetNewsByID(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.NewsByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newsFromView(h.svc.View(*item)))
}

// ListSources — GET /news/sources.
func (h *Handlers) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.svc.Sources(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := make([]SourceDTO, 0, len(sources))
	for _, s := range sources {
		out = append(out, sourceFromModel(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

// FeedRSS — GET /news/feed.xml.
func (h *Handlers) FeedRSS(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.FeedItems(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	body, err := h.feeds.RSS(views, h.now())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	writeXML(w, "application/rss+xml; charset=utf-8", []byte(body))
}

// FeedAtom — GET /news/feed.atom.
func (h *Handlers) FeedAtom(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.FeedItems(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	body, err := h.feeds.Atom(views, h.now())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	writeXML(w, "application/atom+xml; charset=utf-8", []byte(body))
}

// Sitemap — GET /sitemap.xml.
func (h *Handlers) Sitemap(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.SitemapItems(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	body, err := h.feeds.Sitemap(views, h.now())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	writeXML(w, "application/xml; charset=utf-8", body)
}

func writeXML(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
