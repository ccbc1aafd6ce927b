package admissions

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-campus/meridian/internal/platform/httpx"
	"github.com/meridian-campus/meridian/internal/shared"
)

// Handler manages admission endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers admission routes. Receipt routes nest here separately.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

type createAdmissionRequest struct {
	StudentName  string `json:"student_name" validate:"required"`
	StudentEmail string `json:"student_email" validate:"omitempty,email"`
	StudentPhone string `json:"student_phone"`
	CourseID     int64  `json:"course_id" validate:"required,gt=0"`
	NextDueDate  string `json:"next_due_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAdmissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	input := CreateInput{
		StudentName:  req.StudentName,
		StudentEmail: req.StudentEmail,
		StudentPhone: req.StudentPhone,
		CourseID:     req.CourseID,
	}
	if req.NextDueDate != "" {
		if due, err := time.Parse("2006-01-02", req.NextDueDate); err == nil {
			input.NextDueDate = &due
		}
	}

	adm, err := h.service.Create(shared.ContextWithActor(r.Context(), actorID(r)), input)
	if err != nil {
		h.respondError(w, "create admission", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, adm)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid admission id")
		return
	}
	adm, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get admission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, adm)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	courseID, _ := strconv.ParseInt(r.URL.Query().Get("course_id"), 10, 64)

	filters := ListFilters{
		Page:        page,
		Limit:       limit,
		Search:      r.URL.Query().Get("search"),
		CourseID:    courseID,
		PendingOnly: r.URL.Query().Get("pending") == "true",
	}

	admissions, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list admissions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"admissions": admissions,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid admission id")
		return
	}
	if err := h.service.Delete(shared.ContextWithActor(r.Context(), actorID(r)), id); err != nil {
		h.respondError(w, "delete admission", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "admission not found")
	case errors.Is(err, ErrCourseNotFound):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrHasReceipts):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// actorID reads the acting user forwarded by the upstream auth gateway.
func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-Actor-Id"), 10, 64)
	return id
}
