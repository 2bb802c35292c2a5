package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/news-digest/internal/models"
	apierrors "github.com/pribylovaa/news-digest/internal/transport/http/errors"
	"github.com/pribylovaa/news-digest/internal/transport/http/middleware"
)

// Ingest — POST /admin/news/ingest. Принимает JSON или HTML-форму;
// форма получает 303 обратно на страницу.
func (h *Handlers) Ingest(w http.ResponseWriter, r *http.Request) {
	var in IngestRequest

	form := isForm(r)
	if form {
		vals, err := formValues(r)
		if err != nil {
			apierrors.WriteError(w, r, invalidArgument())
			return
		}
		in.URL = vals.Get("url")
		in.SourceID = vals.Get("sourceId")
		in.PublishedAt = vals.Get("publishedAt")
	} else if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument())
		return
	}

	res, err := h.svc.Ingest(r.Context(), middleware.PrincipalFrom(r.Context()), models.IngestRequest{
		URL:         in.URL,
		SourceID:    in.SourceID,
		PublishedAt: in.PublishedAt,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if form {
		h.redirectBack(w, r)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, IngestResponse{ID: res.ID.String(), Status: res.Status, Created: res.Created})
}

// Sync — POST /admin/news/sync. Форма получает 303 обратно на страницу.
func (h *Handlers) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Sync(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if isForm(r) {
		h.redirectBack(w, r)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Reprocess — POST /admin/news/reprocess/{id}.
func (h *Handlers) Reprocess(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Reprocess(r.Context(), middleware.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReprocessResponse{ID: res.ID.String(), Result: string(res.Outcome), Error: res.Error})
}

// Edit — PATCH /admin/news/{id}.
func (h *Handlers) Edit(w http.ResponseWriter, r *http.Request) {
	var in models.EditRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Edit(r.Context(), middleware.PrincipalFrom(r.Context()), id, in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id})
}

// Visibility — POST /admin/news/visibility. Принимает JSON или HTML-форму;
// форма получает 303 обратно на страницу.
func (h *Handlers) Visibility(w http.ResponseWriter, r *http.Request) {
	var in VisibilityRequest

	form := isForm(r)
	if form {
		vals, err := formValues(r)
		if err != nil {
			apierrors.WriteError(w, r, invalidArgument())
			return
		}
		in.ID = vals.Get("id")
		if v, ok := parseBool(vals.Get("isHidden")); ok {
			in.IsHidden = flexBool{Set: true, Value: v}
		}
		if s := strings.TrimSpace(vals.Get("status")); s != "" {
			st := models.Status(s)
			in.Status = &st
		}
	} else if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument())
		return
	}

	if strings.TrimSpace(in.ID) == "" || !in.IsHidden.Set {
		apierrors.WriteError(w, r, invalidArgument())
		return
	}

	res, err := h.svc.SetVisibility(r.Context(), middleware.PrincipalFrom(r.Context()), in.ID, in.IsHidden.Value, in.Status)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if form {
		h.redirectBack(w, r)
		return
	}
	writeJSON(w, http.StatusOK, visibilityFromResult(res))
}

// Delete — POST /admin/news/delete.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	var in IDRequest

	form := isForm(r)
	if form {
		vals, err := formValues(r)
		if err != nil {
			apierrors.WriteError(w, r, invalidArgument())
			return
		}
		in.ID = vals.Get("id")
	} else if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument())
		return
	}

	id, err := h.svc.Delete(r.Context(), middleware.PrincipalFrom(r.Context()), in.ID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if form {
		h.redirectBack(w, r)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id.String()})
}

// DeleteAll — POST /admin/news/delete-all.
func (h *Handlers) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteAll(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if isForm(r) {
		h.redirectBack(w, r)
		return
	}
	writeJSON(w, http.StatusOK, DeleteAllResponse{OK: true, Deleted: n})
}

// AdminList — GET /admin/news?status=&stuck=true&limit=&page_token=.
func (h *Handlers) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f models.AdminFilter

	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			apierrors.WriteError(w, r, invalidArgument())
			return
		}
		f.Limit = int32(n)
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		st := models.Status(strings.ToUpper(v))
		f.Status = &st
	}
	if v := q.Get("stuck"); v != "" {
		stuck, ok := parseBool(v)
		if !ok {
			apierrors.WriteError(w, r, invalidArgument())
			return
		}
		f.Stuck = stuck
	}
	f.PageToken = q.Get("page_token")

	page, err := h.svc.AdminList(r.Context(), middleware.PrincipalFrom(r.Context()), f)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := AdminListResponse{Items: make([]AdminNewsDTO, 0, len(page.Items)), NextPageToken: page.NextPageToken}
	for _, it := range page.Items {
		out.Items = append(out.Items, adminFromItem(it, h.svc.View(it)))
	}
	writeJSON(w, http.StatusOK, out)
}
