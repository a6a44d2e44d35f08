package technician

import (
	"context"

	"github.com/google/uuid"
)

// Directory exposes active technicians and their current assignment
// counts. The selector is its only consumer inside this core.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Technician, error)
	// FindActive returns active technicians whose capability equals
	// adminRole. A non-nil ids slice restricts candidates to that set.
	FindActive(ctx context.Context, adminRole string, ids []uuid.UUID) ([]*Technician, error)
	// ActiveAssignmentCount counts the technician's assignments
	// currently in the given status.
	ActiveAssignmentCount(ctx context.Context, technicianID uuid.UUID, status string) (int, error)
}

// ProjectRepository resolves a project's member id set for scoped
// selection.
type ProjectRepository interface {
	MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}
