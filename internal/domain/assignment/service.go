package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medilab/lims/internal/domain/audit"
	"github.com/medilab/lims/internal/domain/catalog"
	"github.com/medilab/lims/internal/domain/patient"
	"github.com/medilab/lims/internal/domain/technician"
	"github.com/medilab/lims/pkg/apperror"
)

// Service orchestrates assignment creation and the status machine.
// Workload reads and assignment writes are deliberately untransacted:
// two concurrent assigns may pick the same least-loaded technician,
// which is acceptable staleness for this heuristic.
type Service struct {
	repo     Repository
	patients patient.Resolver
	tests    catalog.TestRepository
	dir      technician.Directory
	selector *technician.Selector
	audit    audit.Sink
	logger   zerolog.Logger
}

func NewService(repo Repository, patients patient.Resolver, tests catalog.TestRepository,
	dir technician.Directory, selector *technician.Selector, auditSink audit.Sink, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		tests:    tests,
		dir:      dir,
		selector: selector,
		audit:    auditSink,
		logger:   logger,
	}
}

// AutoAssign creates an assignment for every purchased test of the
// patient that has none yet. Overrides map a test id to an explicit
// technician; an invalid override aborts the whole call, whereas a
// Selector failure only leaves that one assignment pending so the rest
// of the bulk run still goes through.
func (s *Service) AutoAssign(ctx context.Context, patientID uuid.UUID, overrides map[uuid.UUID]uuid.UUID, actorID string) ([]*Assignment, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	testIDs, err := s.patients.GetPurchasedTestIDs(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(testIDs) == 0 {
		return nil, apperror.BadRequest("patient %s has no purchased tests to assign", patientID)
	}

	existing, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	assigned := make(map[uuid.UUID]bool, len(existing))
	for _, a := range existing {
		assigned[a.TestID] = true
	}
	var remaining []uuid.UUID
	for _, id := range testIDs {
		if !assigned[id] {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return nil, nil
	}

	tests, err := s.tests.GetByIDs(ctx, remaining)
	if err != nil {
		return nil, err
	}
	testByID := make(map[uuid.UUID]*catalog.Test, len(tests))
	for _, t := range tests {
		testByID[t.ID] = t
	}

	now := time.Now().UTC()
	var created []*Assignment
	for _, testID := range remaining {
		t, ok := testByID[testID]
		if !ok {
			return nil, apperror.NotFound("test %s not found", testID)
		}

		var tech *technician.Technician
		if overrideID, ok := overrides[testID]; ok {
			tech, err = s.validateOverride(ctx, overrideID, t)
			if err != nil {
				return nil, err
			}
		} else {
			tech, err = s.selector.SelectTechnician(ctx, t.AdminRole, nil)
			if err != nil {
				// Degrade to pending rather than abort the bulk run.
				s.logger.Warn().Err(err).
					Str("test_id", testID.String()).
					Str("admin_role", t.AdminRole).
					Msg("technician selection failed, leaving assignment pending")
				tech = nil
			}
		}

		a := &Assignment{
			PatientID:  patientID,
			TestID:     testID,
			Status:     StatusPending,
			AssignedBy: actorID,
		}
		if tech != nil {
			a.AdminID = &tech.ID
			a.applyStatus(StatusAssigned, now)
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return created, err
		}
		s.audit.Record(ctx, actorID, "assignment.auto_assign", "assignment", a.ID,
			map[string]interface{}{"patient_id": patientID, "test_id": testID, "status": a.Status})
		created = append(created, a)
	}
	return created, nil
}

// ManualAssign assigns a single test, with an explicit technician or a
// Selector pick. An existing (patient, test) assignment is updated in
// place rather than duplicated.
func (s *Service) ManualAssign(ctx context.Context, patientID, testID uuid.UUID, adminID *uuid.UUID, actorID string) (*Assignment, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	t, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	purchased, err := s.patients.GetPurchasedTestIDs(ctx, patientID)
	if err != nil {
		return nil, err
	}
	inSet := false
	for _, id := range purchased {
		if id == testID {
			inSet = true
			break
		}
	}
	if !inSet {
		return nil, apperror.BadRequest("test %s is not in patient %s's purchased set", testID, patientID)
	}

	var tech *technician.Technician
	if adminID != nil {
		tech, err = s.validateOverride(ctx, *adminID, t)
		if err != nil {
			return nil, err
		}
	} else {
		tech, err = s.selector.SelectTechnician(ctx, t.AdminRole, nil)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("test_id", testID.String()).
				Msg("technician selection failed, leaving assignment pending")
			tech = nil
		}
	}

	now := time.Now().UTC()
	a, err := s.repo.GetByPatientAndTest(ctx, patientID, testID)
	switch {
	case err == nil:
		// Re-derive technician and status on the existing record.
		if tech != nil {
			a.AdminID = &tech.ID
			a.Status = StatusAssigned
			a.AssignedAt = &now
		} else {
			a.AdminID = nil
			a.Status = StatusPending
		}
		a.AssignedBy = actorID
		if err := s.repo.Update(ctx, a); err != nil {
			return nil, err
		}
	case apperror.KindOf(err) == apperror.KindNotFound:
		a = &Assignment{
			PatientID:  patientID,
			TestID:     testID,
			Status:     StatusPending,
			AssignedBy: actorID,
		}
		if tech != nil {
			a.AdminID = &tech.ID
			a.applyStatus(StatusAssigned, now)
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.audit.Record(ctx, actorID, "assignment.manual_assign", "assignment", a.ID,
		map[string]interface{}{"patient_id": patientID, "test_id": testID, "status": a.Status})
	return a, nil
}

// Reassign hands the assignment to a new technician. Status is forced
// to assigned and assignedAt refreshed regardless of prior state: this
// is an explicit override, not a transition-table move.
func (s *Service) Reassign(ctx context.Context, assignmentID, newAdminID uuid.UUID, actorID string) (*Assignment, error) {
	a, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	t, err := s.tests.GetByID(ctx, a.TestID)
	if err != nil {
		return nil, err
	}
	tech, err := s.validateOverride(ctx, newAdminID, t)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a.AdminID = &tech.ID
	a.Status = StatusAssigned
	a.AssignedAt = &now
	a.AssignedBy = actorID
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, "assignment.reassign", "assignment", a.ID,
		map[string]interface{}{"admin_id": newAdminID})
	return a, nil
}

// UpdateStatus applies a transition-table move. Only the technician
// currently holding the assignment may update it.
func (s *Service) UpdateStatus(ctx context.Context, assignmentID uuid.UUID, newStatus string, actorID uuid.UUID) (*Assignment, error) {
	a, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.AdminID == nil || *a.AdminID != actorID {
		return nil, apperror.Forbidden("assignment %s is not held by this technician", assignmentID)
	}
	if err := ValidateTransition(a.Status, newStatus); err != nil {
		return nil, err
	}

	a.applyStatus(newStatus, time.Now().UTC())
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID.String(), "assignment.update_status", "assignment", a.ID,
		map[string]interface{}{"status": newStatus})
	return a, nil
}

// MarkSubmitted finalizes an assignment once a validated result has
// been accepted. This is the one path that moves work to submitted
// without walking the transition table; completedAt is stamped if it
// was never set. Only assigned or in-progress work can be finalized.
func (s *Service) MarkSubmitted(ctx context.Context, assignmentID uuid.UUID, actorID uuid.UUID) (*Assignment, error) {
	a, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.AdminID == nil || *a.AdminID != actorID {
		return nil, apperror.Forbidden("assignment %s is not held by this technician", assignmentID)
	}
	if a.Status != StatusAssigned && a.Status != StatusInProgress {
		return nil, apperror.BadRequest("cannot submit a result for a %s assignment", a.Status)
	}

	a.applyStatus(StatusSubmitted, time.Now().UTC())
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID.String(), "assignment.submit", "assignment", a.ID, nil)
	return a, nil
}

// Get returns one assignment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByPatient returns every assignment of a patient.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Assignment, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// ListByTechnician returns a technician's assignments, optionally
// filtered by status.
func (s *Service) ListByTechnician(ctx context.Context, adminID uuid.UUID, status string, limit, offset int) ([]*Assignment, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, apperror.BadRequest("unknown status %q", status)
	}
	return s.repo.ListByTechnician(ctx, adminID, status, limit, offset)
}

// validateOverride checks an explicitly supplied technician: must
// exist, be active, and hold the test's capability tag.
func (s *Service) validateOverride(ctx context.Context, adminID uuid.UUID, t *catalog.Test) (*technician.Technician, error) {
	tech, err := s.dir.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !tech.Active {
		return nil, apperror.BadRequest("technician %s is not active", adminID)
	}
	if tech.AdminRole != t.AdminRole {
		return nil, apperror.BadRequest("technician %s lacks capability %s required by test %s",
			adminID, t.AdminRole, t.Name)
	}
	return tech, nil
}
