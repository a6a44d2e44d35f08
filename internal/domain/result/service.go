package result

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medilab/lims/internal/domain/assignment"
	"github.com/medilab/lims/internal/domain/audit"
	"github.com/medilab/lims/internal/domain/catalog"
	"github.com/medilab/lims/pkg/apperror"
)

// TxRunner runs fn atomically; repositories observe the transaction
// through the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// AssignmentFinalizer is the slice of the assignment service this
// package needs: load the record and finalize it on acceptance.
type AssignmentFinalizer interface {
	Get(ctx context.Context, id uuid.UUID) (*assignment.Assignment, error)
	MarkSubmitted(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*assignment.Assignment, error)
}

// Service accepts validated result submissions and the doctor review
// that follows. Submission and assignment finalization commit together.
type Service struct {
	repo        Repository
	assignments AssignmentFinalizer
	tests       catalog.TestRepository
	audit       audit.Sink
	inTx        TxRunner
}

func NewService(repo Repository, assignments AssignmentFinalizer, tests catalog.TestRepository,
	auditSink audit.Sink, inTx TxRunner) *Service {
	return &Service{
		repo:        repo,
		assignments: assignments,
		tests:       tests,
		audit:       auditSink,
		inTx:        inTx,
	}
}

// SubmitResult validates the value map against the assignment's test
// schema and, if clean, persists the result and finalizes the
// assignment in one transaction. Validation failures return a
// BadRequest carrying every violation; warnings are stored with the
// accepted result, never blocking it.
func (s *Service) SubmitResult(ctx context.Context, assignmentID uuid.UUID, values map[string]interface{}, actorID uuid.UUID) (*TestResult, error) {
	a, err := s.assignments.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.AdminID == nil || *a.AdminID != actorID {
		return nil, apperror.Forbidden("assignment %s is not held by this technician", assignmentID)
	}
	t, err := s.tests.GetByID(ctx, a.TestID)
	if err != nil {
		return nil, err
	}

	vr := Validate(t.Fields, values, t.NormalRangeMin, t.NormalRangeMax)
	if !vr.IsValid {
		return nil, apperror.BadRequest("result values failed validation").WithDetails(vr.Errors...)
	}

	tr := &TestResult{
		AssignmentID: assignmentID,
		Values:       values,
		Warnings:     vr.Warnings,
		SubmittedBy:  actorID,
		SubmittedAt:  time.Now().UTC(),
	}
	err = s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.assignments.MarkSubmitted(ctx, assignmentID, actorID); err != nil {
			return err
		}
		return s.repo.Create(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID.String(), "result.submit", "test_result", tr.ID,
		map[string]interface{}{"assignment_id": assignmentID, "warnings": len(tr.Warnings)})
	return tr, nil
}

// ReviewResult records a doctor's sign-off on a submitted result. A
// result can only be reviewed once.
func (s *Service) ReviewResult(ctx context.Context, resultID uuid.UUID, notes *string, reviewerID uuid.UUID) (*TestResult, error) {
	tr, err := s.repo.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if tr.ReviewedBy != nil {
		return nil, apperror.Conflict("result %s has already been reviewed", resultID)
	}

	now := time.Now().UTC()
	tr.ReviewedBy = &reviewerID
	tr.ReviewedAt = &now
	tr.ReviewNotes = notes
	if err := s.repo.Update(ctx, tr); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, reviewerID.String(), "result.review", "test_result", tr.ID, nil)
	return tr, nil
}

// GetByAssignment returns the result submitted for an assignment.
func (s *Service) GetByAssignment(ctx context.Context, assignmentID uuid.UUID) (*TestResult, error) {
	return s.repo.GetByAssignment(ctx, assignmentID)
}
