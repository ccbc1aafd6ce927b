package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-campus/meridian/internal/shared"
)

type memoryRepo struct {
	courses       map[int64]Course
	admissionRefs map[int64]bool
	nextID        int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		courses:       make(map[int64]Course),
		admissionRefs: make(map[int64]bool),
	}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Course, int, error) {
	var out []Course
	for _, c := range r.courses {
		if filters.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Search)) {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return Course{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) Create(ctx context.Context, course Course) (Course, error) {
	for _, existing := range r.courses {
		if existing.Code == course.Code {
			return Course{}, shared.ErrDuplicate
		}
	}
	r.nextID++
	course.ID = r.nextID
	r.courses[course.ID] = course
	return course, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, course Course) error {
	if _, ok := r.courses[id]; !ok {
		return shared.ErrNotFound
	}
	course.ID = id
	r.courses[id] = course
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.courses[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *memoryRepo) HasAdmissions(ctx context.Context, id int64) (bool, error) {
	return r.admissionRefs[id], nil
}

func nd(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func validCourse() Course {
	return Course{
		Code:           "DIP-CS",
		Name:           "Diploma in Computer Science",
		DurationMonths: 12,
		AdmissionFee:   nd("2000"),
		CourseFee:      nd("8000"),
	}
}

func TestCreateCourse(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "DIP-CS", got.Code)
}

func TestCreateCourseRejectsNegativeFeeComponent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	course := validCourse()
	course.SemesterFee = nd("-100")

	_, err := svc.Create(ctx, course)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "semester_fee", verr.Field)
}

func TestCreateCourseRejectsMissingCode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	course := validCourse()
	course.Code = "  "

	_, err := svc.Create(ctx, course)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "code", verr.Field)
}

func TestCreateCourseAllowsAbsentComponents(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	course := Course{Code: "CERT-1", Name: "Short Certificate", DurationMonths: 3}
	_, err := svc.Create(ctx, course)
	require.NoError(t, err)
}

func TestCreateCourseDuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)
	_, err = svc.Create(ctx, validCourse())
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateCourseValidates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)

	changed := validCourse()
	changed.AgentCommission = nd("-1")
	err = svc.Update(ctx, created.ID, changed)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "agent_commission", verr.Field)

	changed.AgentCommission = nd("500")
	require.NoError(t, svc.Update(ctx, created.ID, changed))
}

func TestDeleteCourseRefusedWhileInUse(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)
	repo.admissionRefs[created.ID] = true

	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrCourseInUse)

	repo.admissionRefs[created.ID] = false
	require.NoError(t, svc.Delete(ctx, created.ID))
}

func TestGetCourseNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	_, err := svc.Get(ctx, 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Get(ctx, 0)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
