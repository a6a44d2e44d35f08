// Package assignment owns the work-assignment lifecycle: which
// technician performs which test for which patient, and the status
// machine the record moves through.
package assignment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medilab/lims/pkg/apperror"
)

// Assignment statuses. An assignment starts pending when no technician
// is available and submitted is terminal.
const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusSubmitted  = "submitted"
)

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusAssigned:   true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusSubmitted:  true,
}

// statusTransitions is the authoritative table for UpdateStatus. The
// result-submission path advances in_progress work to submitted
// directly, outside this table.
var statusTransitions = map[string][]string{
	StatusPending:    {StatusAssigned},
	StatusAssigned:   {StatusInProgress},
	StatusInProgress: {},
	StatusCompleted:  {StatusSubmitted},
	StatusSubmitted:  {},
}

// Assignment links one patient, one test, and optionally one
// technician. AdminID is nil only while the assignment is pending.
// The three timestamps are set on first entry into the matching state
// and never overwritten.
type Assignment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	TestID      uuid.UUID  `db:"test_id" json:"test_id"`
	AdminID     *uuid.UUID `db:"admin_id" json:"admin_id,omitempty"`
	Status      string     `db:"status" json:"status"`
	AssignedAt  *time.Time `db:"assigned_at" json:"assigned_at,omitempty"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	AssignedBy  string     `db:"assigned_by" json:"assigned_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ValidateTransition checks the requested move against the transition
// table. Rejections carry the allowed next states so callers can render
// an actionable message.
func ValidateTransition(current, next string) error {
	if !validStatuses[next] {
		return apperror.BadRequest("unknown status %q", next)
	}
	allowed := statusTransitions[current]
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	msg := "no further transitions"
	if len(allowed) > 0 {
		msg = "allowed next: " + strings.Join(allowed, ", ")
	}
	return apperror.BadRequest("cannot transition from %s to %s", current, next).
		WithDetails(msg)
}

// applyStatus moves the assignment into the new status and stamps the
// matching timestamp if it has never been set. Repeat entry into a
// state leaves the original timestamp intact.
func (a *Assignment) applyStatus(status string, now time.Time) {
	a.Status = status
	switch status {
	case StatusAssigned:
		if a.AssignedAt == nil {
			a.AssignedAt = &now
		}
	case StatusInProgress:
		if a.StartedAt == nil {
			a.StartedAt = &now
		}
	case StatusCompleted, StatusSubmitted:
		if a.CompletedAt == nil {
			a.CompletedAt = &now
		}
	}
}
