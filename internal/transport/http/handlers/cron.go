package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/news-digest/internal/transport/http/errors"
	"github.com/pribylovaa/news-digest/internal/transport/http/middleware"
)

// Cron — POST|GET /cron/news для внешнего планировщика (bearer = cron-секрет).
func (h *Handlers) Cron(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.CronRun(r.Context(), middleware.TokenFrom(r.Context()))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
