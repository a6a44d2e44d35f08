package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/medilab/lims/pkg/apperror"
)

type Service struct {
	tests TestRepository
}

func NewService(tests TestRepository) *Service {
	return &Service{tests: tests}
}

func (s *Service) CreateTest(ctx context.Context, t *Test) error {
	if t.Name == "" {
		return apperror.BadRequest("name is required")
	}
	if t.AdminRole == "" {
		return apperror.BadRequest("admin_role is required")
	}
	if len(t.Fields) == 0 {
		return apperror.BadRequest("at least one result field is required")
	}
	if err := ValidateFields(t.Fields); err != nil {
		return err
	}
	if t.NormalRangeMin != nil && t.NormalRangeMax != nil && *t.NormalRangeMin > *t.NormalRangeMax {
		return apperror.BadRequest("normal_range_min exceeds normal_range_max")
	}
	return s.tests.Create(ctx, t)
}

func (s *Service) GetTest(ctx context.Context, id uuid.UUID) (*Test, error) {
	return s.tests.GetByID(ctx, id)
}

func (s *Service) UpdateTest(ctx context.Context, t *Test) error {
	if t.Name == "" {
		return apperror.BadRequest("name is required")
	}
	if t.AdminRole == "" {
		return apperror.BadRequest("admin_role is required")
	}
	if err := ValidateFields(t.Fields); err != nil {
		return err
	}
	return s.tests.Update(ctx, t)
}

func (s *Service) ListTests(ctx context.Context, activeOnly bool, limit, offset int) ([]*Test, int, error) {
	return s.tests.List(ctx, activeOnly, limit, offset)
}
