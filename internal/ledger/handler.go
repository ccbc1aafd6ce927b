package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-campus/meridian/internal/observability"
	"github.com/meridian-campus/meridian/internal/platform/httpx"
)

// Handler manages receipt ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		metrics:  metrics,
		validate: validator.New(),
	}
}

// MountAdmissionRoutes registers receipt routes nested under an admission.
func (h *Handler) MountAdmissionRoutes(r chi.Router) {
	r.Post("/{id}/receipts", h.createReceipt)
	r.Get("/{id}/fees", h.getFeeDetails)
}

// MountReceiptRoutes registers routes addressing receipts directly.
func (h *Handler) MountReceiptRoutes(r chi.Router) {
	r.Put("/{id}", h.updateReceipt)
	r.Delete("/{id}", h.deleteReceipt)
}

type createReceiptRequest struct {
	ReceiptNumber    string          `json:"receipt_number"`
	AmountCollected  decimal.Decimal `json:"amount_collected"`
	CollectedTowards string          `json:"collected_towards" validate:"required,oneof=ADMISSION_FEE COURSE_FEE SEMESTER_FEE OTHER"`
	PaymentDate      string          `json:"payment_date" validate:"required,datetime=2006-01-02"`
	PaymentMode      string          `json:"payment_mode" validate:"required"`
	TransactionID    string          `json:"transaction_id"`
	Notes            string          `json:"notes"`
	NextDueDate      string          `json:"next_due_date" validate:"omitempty,datetime=2006-01-02"`
}

type updateReceiptRequest struct {
	AmountCollected  *decimal.Decimal `json:"amount_collected"`
	CollectedTowards *string          `json:"collected_towards" validate:"omitempty,oneof=ADMISSION_FEE COURSE_FEE SEMESTER_FEE OTHER"`
	PaymentDate      *string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMode      *string          `json:"payment_mode"`
	TransactionID    *string          `json:"transaction_id"`
	Notes            *string          `json:"notes"`
	NextDueDate      *string          `json:"next_due_date" validate:"omitempty,datetime=2006-01-02"`
}

type receiptResponse struct {
	ID               int64           `json:"id"`
	AdmissionID      int64           `json:"admission_id"`
	ReceiptNumber    string          `json:"receipt_number"`
	AmountCollected  decimal.Decimal `json:"amount_collected"`
	CollectedTowards FeeType         `json:"collected_towards"`
	PaymentDate      string          `json:"payment_date"`
	PaymentMode      string          `json:"payment_mode"`
	TransactionID    string          `json:"transaction_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedBy        int64           `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (h *Handler) createReceipt(w http.ResponseWriter, r *http.Request) {
	admissionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid admission id")
		return
	}

	var req createReceiptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	paymentDate, _ := time.Parse("2006-01-02", req.PaymentDate)
	input := CreateReceiptInput{
		Number:           req.ReceiptNumber,
		Amount:           req.AmountCollected,
		CollectedTowards: FeeType(req.CollectedTowards),
		PaymentDate:      paymentDate,
		PaymentMode:      req.PaymentMode,
		TransactionID:    req.TransactionID,
		Notes:            req.Notes,
		NextDueDate:      parseDate(req.NextDueDate),
		CreatedBy:        actorID(r),
	}

	rec, err := h.service.CreateReceipt(r.Context(), admissionID, input)
	if err != nil {
		h.metrics.LedgerMutation("create", "error")
		h.respondError(w, r, "create receipt", err)
		return
	}
	h.metrics.LedgerMutation("create", "ok")
	httpx.JSON(w, http.StatusCreated, toReceiptResponse(rec))
}

func (h *Handler) updateReceipt(w http.ResponseWriter, r *http.Request) {
	receiptID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid receipt id")
		return
	}

	var req updateReceiptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	changes := UpdateReceiptInput{
		Amount:        req.AmountCollected,
		PaymentMode:   req.PaymentMode,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		UpdatedBy:     actorID(r),
	}
	if req.CollectedTowards != nil {
		towards := FeeType(*req.CollectedTowards)
		changes.CollectedTowards = &towards
	}
	if req.PaymentDate != nil {
		changes.PaymentDate = parseDate(*req.PaymentDate)
	}
	if req.NextDueDate != nil {
		changes.NextDueDate = parseDate(*req.NextDueDate)
	}

	rec, err := h.service.UpdateReceipt(r.Context(), receiptID, changes)
	if err != nil {
		h.metrics.LedgerMutation("update", "error")
		h.respondError(w, r, "update receipt", err)
		return
	}
	h.metrics.LedgerMutation("update", "ok")
	httpx.JSON(w, http.StatusOK, toReceiptResponse(rec))
}

func (h *Handler) deleteReceipt(w http.ResponseWriter, r *http.Request) {
	receiptID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid receipt id")
		return
	}

	if err := h.service.DeleteReceipt(r.Context(), receiptID, actorID(r)); err != nil {
		h.metrics.LedgerMutation("delete", "error")
		h.respondError(w, r, "delete receipt", err)
		return
	}
	h.metrics.LedgerMutation("delete", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getFeeDetails(w http.ResponseWriter, r *http.Request) {
	admissionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid admission id")
		return
	}

	details, err := h.service.GetFeeDetails(r.Context(), admissionID)
	if err != nil {
		h.respondError(w, r, "get fee details", err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrAdmissionNotFound), errors.Is(err, ErrReceiptNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateReceiptNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.As(err, &verr):
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"title":  "Validation Failed",
			"status": http.StatusUnprocessableEntity,
			"detail": verr.Error(),
			"rule":   string(verr.Rule),
			"bound":  verr.Bound,
		})
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func toReceiptResponse(rec *Receipt) receiptResponse {
	return receiptResponse{
		ID:               rec.ID,
		AdmissionID:      rec.AdmissionID,
		ReceiptNumber:    rec.Number,
		AmountCollected:  rec.Amount,
		CollectedTowards: rec.CollectedTowards,
		PaymentDate:      rec.PaymentDate.Format("2006-01-02"),
		PaymentMode:      rec.PaymentMode,
		TransactionID:    rec.TransactionID,
		Notes:            rec.Notes,
		CreatedBy:        rec.CreatedBy,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// actorID reads the acting user forwarded by the upstream auth gateway.
func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-Actor-Id"), 10, 64)
	return id
}
