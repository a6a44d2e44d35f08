package assignment

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists assignments. The store enforces the one
// assignment per (patient_id, test_id) invariant with a unique
// constraint; Create surfaces a racing duplicate as a Conflict error.
type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	GetByPatientAndTest(ctx context.Context, patientID, testID uuid.UUID) (*Assignment, error)
	Update(ctx context.Context, a *Assignment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Assignment, error)
	ListByTechnician(ctx context.Context, adminID uuid.UUID, status string, limit, offset int) ([]*Assignment, int, error)
}
