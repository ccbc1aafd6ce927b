package catalog

import (
	"context"
	"fmt"

	"github.com/meridian-campus/meridian/internal/shared"
)

// ErrCourseInUse refuses course deletion while admissions reference it.
var ErrCourseInUse = fmt.Errorf("course has admissions")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Course, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Course, error) {
	if id <= 0 {
		return Course{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, course Course) (Course, error) {
	if err := validateCourse(course); err != nil {
		return Course{}, err
	}
	return s.repo.Create(ctx, course)
}

func (s *Service) Update(ctx context.Context, id int64, course Course) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := validateCourse(course); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, course)
}

// Delete removes a course unless an admission is billed against it. Deleting
// a referenced course would orphan every balance derived from its schedule.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	inUse, err := s.repo.HasAdmissions(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrCourseInUse
	}
	return s.repo.Delete(ctx, id)
}
