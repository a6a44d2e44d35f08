package result

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists accepted results. One result per assignment,
// enforced by a unique index.
type Repository interface {
	Create(ctx context.Context, r *TestResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*TestResult, error)
	GetByAssignment(ctx context.Context, assignmentID uuid.UUID) (*TestResult, error)
	Update(ctx context.Context, r *TestResult) error
}
