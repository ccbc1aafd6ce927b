package ledger

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-campus/meridian/internal/shared"
)

// Tx exposes the data access methods available inside one ledger transaction.
// AdmissionForUpdate must lock the admission row so concurrent mutations on
// the same admission serialize on the pre-mutation balance.
type Tx interface {
	AdmissionForUpdate(ctx context.Context, admissionID int64) (*Admission, error)
	ScheduleByCourse(ctx context.Context, courseID int64) (*FeeSchedule, error)
	ReceiptsByAdmission(ctx context.Context, admissionID int64) ([]Receipt, error)
	ReceiptByID(ctx context.Context, id int64) (*Receipt, error)
	InsertReceipt(ctx context.Context, admissionID int64, in CreateReceiptInput) (*Receipt, error)
	SaveReceipt(ctx context.Context, rec *Receipt) error
	DeleteReceipt(ctx context.Context, id int64) error
	UpdateDerived(ctx context.Context, admissionID int64, balance decimal.Decimal, nextDueDate *time.Time) error
}

// RepositoryPort defines data access for the receipt ledger.
type RepositoryPort interface {
	WithLedgerTx(ctx context.Context, fn func(context.Context, Tx) error) error
	Admission(ctx context.Context, id int64) (*Admission, error)
	ScheduleByCourse(ctx context.Context, courseID int64) (*FeeSchedule, error)
	ReceiptsByAdmission(ctx context.Context, admissionID int64) ([]Receipt, error)
}

// Service orchestrates receipt mutations and keeps the admission's derived
// fields consistent with the receipt set.
type Service struct {
	repo   RepositoryPort
	cache  *FeeDetailsCache
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance. Cache and audit may be nil.
func NewService(repo RepositoryPort, cache *FeeDetailsCache, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, audit: audit, logger: logger}
}

// CreateReceipt records a payment against an admission. Validation runs
// against the balance derived before the receipt is admitted; receipt insert
// and the derived-field update commit atomically.
func (s *Service) CreateReceipt(ctx context.Context, admissionID int64, in CreateReceiptInput) (*Receipt, error) {
	if in.Number == "" {
		in.Number = generateReceiptNumber()
	}
	in.PaymentMode = strings.ToUpper(strings.TrimSpace(in.PaymentMode))

	var created *Receipt
	err := s.repo.WithLedgerTx(ctx, func(ctx context.Context, tx Tx) error {
		adm, err := tx.AdmissionForUpdate(ctx, admissionID)
		if err != nil {
			return err
		}
		sched, err := tx.ScheduleByCourse(ctx, adm.CourseID)
		if err != nil {
			return err
		}
		receipts, err := tx.ReceiptsByAdmission(ctx, admissionID)
		if err != nil {
			return err
		}

		totalFee := TotalFee(*sched)
		paidBefore := TotalPaid(receipts)
		currentBalance := OutstandingBalance(totalFee, paidBefore)

		if err := ValidateReceipt(in, currentBalance, componentOrZero(sched.AdmissionFee)); err != nil {
			return err
		}

		rec, err := tx.InsertReceipt(ctx, admissionID, in)
		if err != nil {
			return err
		}

		balance := OutstandingBalance(totalFee, paidBefore.Add(rec.Amount))
		nextDue := in.NextDueDate
		if !balance.IsPositive() {
			nextDue = nil
		}
		if err := tx.UpdateDerived(ctx, admissionID, balance, nextDue); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.recordAudit(ctx, in.CreatedBy, "receipt.create", created.ID, map[string]any{
		"admission_id": admissionID,
		"amount":       created.Amount.String(),
		"towards":      string(created.CollectedTowards),
	})
	return created, nil
}

// UpdateReceipt applies a partial change to a receipt and recomputes the
// owning admission's derived fields over the updated receipt set. The
// balance cap is deliberately not re-checked here: edits that push totalPaid
// past totalFee are absorbed by the zero clamp, matching the create-time-only
// cap of the original behavior.
func (s *Service) UpdateReceipt(ctx context.Context, receiptID int64, changes UpdateReceiptInput) (*Receipt, error) {
	var updated *Receipt
	err := s.repo.WithLedgerTx(ctx, func(ctx context.Context, tx Tx) error {
		rec, err := tx.ReceiptByID(ctx, receiptID)
		if err != nil {
			return err
		}
		adm, err := tx.AdmissionForUpdate(ctx, rec.AdmissionID)
		if err != nil {
			return err
		}
		sched, err := tx.ScheduleByCourse(ctx, adm.CourseID)
		if err != nil {
			return err
		}

		if changes.Amount != nil {
			if !changes.Amount.IsPositive() {
				return &ValidationError{Rule: RuleAmountPositive}
			}
			rec.Amount = *changes.Amount
		}
		if changes.CollectedTowards != nil {
			rec.CollectedTowards = *changes.CollectedTowards
		}
		if changes.PaymentDate != nil {
			rec.PaymentDate = *changes.PaymentDate
		}
		if changes.PaymentMode != nil {
			rec.PaymentMode = strings.ToUpper(strings.TrimSpace(*changes.PaymentMode))
		}
		if changes.TransactionID != nil {
			rec.TransactionID = *changes.TransactionID
		}
		if changes.Notes != nil {
			rec.Notes = *changes.Notes
		}

		if err := tx.SaveReceipt(ctx, rec); err != nil {
			return err
		}

		receipts, err := tx.ReceiptsByAdmission(ctx, rec.AdmissionID)
		if err != nil {
			return err
		}
		balance := OutstandingBalance(TotalFee(*sched), TotalPaid(receipts))
		nextDue := adm.NextDueDate
		if changes.NextDueDate != nil {
			nextDue = changes.NextDueDate
		}
		if !balance.IsPositive() {
			nextDue = nil
		}
		if err := tx.UpdateDerived(ctx, rec.AdmissionID, balance, nextDue); err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.recordAudit(ctx, changes.UpdatedBy, "receipt.update", updated.ID, map[string]any{
		"admission_id": updated.AdmissionID,
		"amount":       updated.Amount.String(),
	})
	return updated, nil
}

// DeleteReceipt removes a receipt and recomputes the owning admission's
// balance. The next due date is cleared unconditionally on delete, even when
// the balance becomes positive again; pending-dues reporting depends on this
// long-standing behavior.
func (s *Service) DeleteReceipt(ctx context.Context, receiptID int64, deletedBy int64) error {
	var admissionID int64
	err := s.repo.WithLedgerTx(ctx, func(ctx context.Context, tx Tx) error {
		rec, err := tx.ReceiptByID(ctx, receiptID)
		if err != nil {
			return err
		}
		adm, err := tx.AdmissionForUpdate(ctx, rec.AdmissionID)
		if err != nil {
			return err
		}
		sched, err := tx.ScheduleByCourse(ctx, adm.CourseID)
		if err != nil {
			return err
		}
		if err := tx.DeleteReceipt(ctx, rec.ID); err != nil {
			return err
		}
		receipts, err := tx.ReceiptsByAdmission(ctx, rec.AdmissionID)
		if err != nil {
			return err
		}
		balance := OutstandingBalance(TotalFee(*sched), TotalPaid(receipts))
		if err := tx.UpdateDerived(ctx, rec.AdmissionID, balance, nil); err != nil {
			return err
		}
		admissionID = rec.AdmissionID
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	s.recordAudit(ctx, deletedBy, "receipt.delete", receiptID, map[string]any{
		"admission_id": admissionID,
	})
	return nil
}

// GetFeeDetails returns the fee summary for an admission. Reads go through
// the versioned cache when one is configured; concurrent misses for the same
// admission are collapsed to a single load.
func (s *Service) GetFeeDetails(ctx context.Context, admissionID int64) (*FeeDetails, error) {
	loader := func(ctx context.Context) (*FeeDetails, error) {
		return s.loadFeeDetails(ctx, admissionID)
	}
	if s.cache == nil {
		return loader(ctx)
	}
	return s.cache.Fetch(ctx, admissionID, loader)
}

func (s *Service) loadFeeDetails(ctx context.Context, admissionID int64) (*FeeDetails, error) {
	adm, err := s.repo.Admission(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	sched, err := s.repo.ScheduleByCourse(ctx, adm.CourseID)
	if err != nil {
		return nil, err
	}
	receipts, err := s.repo.ReceiptsByAdmission(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	totalFee := TotalFee(*sched)
	totalPaid := TotalPaid(receipts)
	return &FeeDetails{
		AdmissionID:  adm.ID,
		TotalFee:     totalFee,
		TotalPaid:    totalPaid,
		Balance:      OutstandingBalance(totalFee, totalPaid),
		AdmissionFee: componentOrZero(sched.AdmissionFee),
		CourseFee:    componentOrZero(sched.CourseFee),
		SemesterFee:  componentOrZero(sched.SemesterFee),
		NextDueDate:  adm.NextDueDate,
	}, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump fee cache", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, receiptID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "receipt",
		EntityID: strconv.FormatInt(receiptID, 10),
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("record audit", slog.String("action", action), slog.Any("error", err))
	}
}

func generateReceiptNumber() string {
	return "RCP-" + strings.ToUpper(uuid.NewString()[:8])
}
