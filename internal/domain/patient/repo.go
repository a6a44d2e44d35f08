package patient

import (
	"context"

	"github.com/google/uuid"
)

// Resolver is the narrow view of the patient subsystem this core
// consumes: existence checks and the purchased test set.
type Resolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	// GetPurchasedTestIDs returns the ids of every test the patient
	// purchased: the tests of their package plus any addon tests,
	// deduplicated.
	GetPurchasedTestIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
}
