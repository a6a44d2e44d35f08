package catalog

import (
	"context"

	"github.com/google/uuid"
)

type TestRepository interface {
	Create(ctx context.Context, t *Test) error
	GetByID(ctx context.Context, id uuid.UUID) (*Test, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Test, error)
	Update(ctx context.Context, t *Test) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Test, int, error)
}
