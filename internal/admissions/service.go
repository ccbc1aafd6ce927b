package admissions

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridian-campus/meridian/internal/ledger"
	"github.com/meridian-campus/meridian/internal/shared"
)

// ErrCourseNotFound signals enrolment against a missing course.
var ErrCourseNotFound = errors.New("course not found")

// Service handles enrolment and admission lifecycle. The opening balance is
// the full fee due under the course schedule; receipts whittle it down from
// there.
type Service struct {
	repo   Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance. Audit may be nil.
func NewService(repo Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Create enrols a student. The next due date is only kept when there is
// something left to pay.
func (s *Service) Create(ctx context.Context, in CreateInput) (Admission, error) {
	if strings.TrimSpace(in.StudentName) == "" {
		return Admission{}, errors.New("student name is required")
	}

	sched, err := s.repo.ScheduleByCourse(ctx, in.CourseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Admission{}, ErrCourseNotFound
		}
		return Admission{}, err
	}

	balance := ledger.OutstandingBalance(ledger.TotalFee(*sched), decimal.Zero)
	nextDue := in.NextDueDate
	if !balance.IsPositive() {
		nextDue = nil
	}

	adm, err := s.repo.Create(ctx, Admission{
		StudentName:  strings.TrimSpace(in.StudentName),
		StudentEmail: strings.TrimSpace(in.StudentEmail),
		StudentPhone: strings.TrimSpace(in.StudentPhone),
		CourseID:     in.CourseID,
		Balance:      balance,
		NextDueDate:  nextDue,
	})
	if err != nil {
		return Admission{}, err
	}

	s.recordAudit(ctx, "admission.create", adm.ID, map[string]any{
		"course_id": adm.CourseID,
		"balance":   adm.Balance.String(),
	})
	return adm, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Admission, error) {
	if id <= 0 {
		return Admission{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Admission, int, error) {
	return s.repo.List(ctx, filters)
}

// Delete removes an admission unless receipts reference it. Collected money
// must stay accounted for; voiding the receipts comes first.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	hasReceipts, err := s.repo.HasReceipts(ctx, id)
	if err != nil {
		return err
	}
	if hasReceipts {
		return shared.ErrHasReceipts
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "admission.delete", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx),
		Action:   action,
		Entity:   "admission",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("record audit", slog.String("action", action), slog.Any("error", err))
	}
}
