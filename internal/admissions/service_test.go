package admissions

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-campus/meridian/internal/ledger"
	"github.com/meridian-campus/meridian/internal/shared"
)

type memoryRepo struct {
	admissions  map[int64]Admission
	schedules   map[int64]ledger.FeeSchedule
	receiptRefs map[int64]bool
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		admissions:  make(map[int64]Admission),
		schedules:   make(map[int64]ledger.FeeSchedule),
		receiptRefs: make(map[int64]bool),
	}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Admission, int, error) {
	var out []Admission
	for _, adm := range r.admissions {
		if filters.PendingOnly && !adm.Balance.IsPositive() {
			continue
		}
		if filters.CourseID > 0 && adm.CourseID != filters.CourseID {
			continue
		}
		out = append(out, adm)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Admission, error) {
	adm, ok := r.admissions[id]
	if !ok {
		return Admission{}, shared.ErrNotFound
	}
	return adm, nil
}

func (r *memoryRepo) Create(ctx context.Context, adm Admission) (Admission, error) {
	r.nextID++
	adm.ID = r.nextID
	r.admissions[adm.ID] = adm
	return adm, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.admissions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.admissions, id)
	return nil
}

func (r *memoryRepo) HasReceipts(ctx context.Context, id int64) (bool, error) {
	return r.receiptRefs[id], nil
}

func (r *memoryRepo) ScheduleByCourse(ctx context.Context, courseID int64) (*ledger.FeeSchedule, error) {
	sched, ok := r.schedules[courseID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &sched, nil
}

func nd(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func TestCreateSeedsBalanceFromSchedule(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.schedules[10] = ledger.FeeSchedule{
		AdmissionFee: nd("2000"),
		CourseFee:    nd("8000"),
	}
	svc := NewService(repo, nil, nil)

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	adm, err := svc.Create(ctx, CreateInput{
		StudentName: "Asha Verma",
		CourseID:    10,
		NextDueDate: &due,
	})
	require.NoError(t, err)
	require.True(t, adm.Balance.Equal(decimal.RequireFromString("10000")))
	require.NotNil(t, adm.NextDueDate)
	require.Equal(t, due, *adm.NextDueDate)
}

func TestCreateZeroFeeCourseDropsDueDate(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.schedules[10] = ledger.FeeSchedule{}
	svc := NewService(repo, nil, nil)

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	adm, err := svc.Create(ctx, CreateInput{
		StudentName: "Asha Verma",
		CourseID:    10,
		NextDueDate: &due,
	})
	require.NoError(t, err)
	require.True(t, adm.Balance.Equal(decimal.Zero))
	require.Nil(t, adm.NextDueDate)
}

func TestCreateNegativeScheduleClampsToZero(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.schedules[10] = ledger.FeeSchedule{
		CourseFee:       nd("1000"),
		AgentCommission: nd("1500"),
	}
	svc := NewService(repo, nil, nil)

	adm, err := svc.Create(ctx, CreateInput{StudentName: "Asha Verma", CourseID: 10})
	require.NoError(t, err)
	require.True(t, adm.Balance.Equal(decimal.Zero))
}

func TestCreateUnknownCourse(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.Create(ctx, CreateInput{StudentName: "Asha Verma", CourseID: 99})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCreateRequiresStudentName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.Create(ctx, CreateInput{StudentName: "  ", CourseID: 10})
	require.Error(t, err)
}

func TestDeleteRefusedWhileReceiptsExist(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.schedules[10] = ledger.FeeSchedule{CourseFee: nd("1000")}
	svc := NewService(repo, nil, nil)

	adm, err := svc.Create(ctx, CreateInput{StudentName: "Asha Verma", CourseID: 10})
	require.NoError(t, err)

	repo.receiptRefs[adm.ID] = true
	require.ErrorIs(t, svc.Delete(ctx, adm.ID), shared.ErrHasReceipts)

	repo.receiptRefs[adm.ID] = false
	require.NoError(t, svc.Delete(ctx, adm.ID))
	_, err = svc.Get(ctx, adm.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListPendingFilter(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.schedules[10] = ledger.FeeSchedule{CourseFee: nd("1000")}
	repo.schedules[20] = ledger.FeeSchedule{}
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(ctx, CreateInput{StudentName: "Owes Money", CourseID: 10})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{StudentName: "Paid Up", CourseID: 20})
	require.NoError(t, err)

	pending, total, err := svc.List(ctx, ListFilters{PendingOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, pending, 1)
	require.Equal(t, "Owes Money", pending[0].StudentName)
}
