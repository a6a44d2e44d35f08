package technician

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Statuses that count toward a technician's active workload.
const (
	workloadStatusAssigned   = "assigned"
	workloadStatusInProgress = "in_progress"
)

// Selector picks the least-loaded eligible technician for a capability,
// optionally restricted to a project's members. Read-only: it never
// mutates assignment state.
type Selector struct {
	directory Directory
	projects  ProjectRepository
}

func NewSelector(directory Directory, projects ProjectRepository) *Selector {
	return &Selector{directory: directory, projects: projects}
}

// SelectTechnician returns the eligible technician with the lowest
// active workload, ties broken by earliest registration. A nil result
// with a nil error means no technician is available (an expected
// outcome, not a failure); only infrastructure errors are returned.
func (s *Selector) SelectTechnician(ctx context.Context, adminRole string, scope *uuid.UUID) (*Technician, error) {
	ranked, err := s.RankTechnicians(ctx, adminRole, scope)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, nil
	}
	return ranked[0].Technician, nil
}

// RankTechnicians returns every eligible candidate ordered by ascending
// active workload, then ascending creation time. A pure projection of
// the selection algorithm.
func (s *Selector) RankTechnicians(ctx context.Context, adminRole string, scope *uuid.UUID) ([]*RankedTechnician, error) {
	if adminRole == "" {
		return nil, fmt.Errorf("admin role is required")
	}

	var memberIDs []uuid.UUID
	if scope != nil {
		ids, err := s.projects.MemberIDs(ctx, *scope)
		if err != nil {
			return nil, fmt.Errorf("resolve project members: %w", err)
		}
		if len(ids) == 0 {
			// Scoped to a project with no members: nobody is eligible.
			return nil, nil
		}
		memberIDs = ids
	}

	candidates, err := s.directory.FindActive(ctx, adminRole, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("find active technicians: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ranked := make([]*RankedTechnician, 0, len(candidates))
	for _, cand := range candidates {
		assigned, err := s.directory.ActiveAssignmentCount(ctx, cand.ID, workloadStatusAssigned)
		if err != nil {
			return nil, fmt.Errorf("count assigned workload: %w", err)
		}
		inProgress, err := s.directory.ActiveAssignmentCount(ctx, cand.ID, workloadStatusInProgress)
		if err != nil {
			return nil, fmt.Errorf("count in-progress workload: %w", err)
		}
		ranked = append(ranked, &RankedTechnician{
			Technician:     cand,
			ActiveWorkload: assigned + inProgress,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ActiveWorkload != ranked[j].ActiveWorkload {
			return ranked[i].ActiveWorkload < ranked[j].ActiveWorkload
		}
		return ranked[i].Technician.CreatedAt.Before(ranked[j].Technician.CreatedAt)
	})

	return ranked, nil
}
