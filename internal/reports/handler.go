package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-campus/meridian/internal/platform/httpx"
)

// Handler manages report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pending-dues", h.pendingDues)
	r.Get("/pending-dues.csv", h.pendingDuesCSV)
}

func (h *Handler) pendingDues(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.PendingDues(r.Context(), parseAsOf(r))
	if err != nil {
		h.logger.Error("pending dues report", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) pendingDuesCSV(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.PendingDues(r.Context(), parseAsOf(r))
	if err != nil {
		h.logger.Error("pending dues csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="pending-dues-`+report.AsOf.Format("2006-01-02")+`.csv"`)
	if err := WritePendingDuesCSV(w, report); err != nil {
		h.logger.Error("write pending dues csv", slog.Any("error", err))
	}
}

func parseAsOf(r *http.Request) time.Time {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Time{}
	}
	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return asOf
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
