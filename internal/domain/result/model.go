package result

import (
	"time"

	"github.com/google/uuid"
)

// TestResult maps to the test_result table: the accepted value map for
// one assignment, plus the doctor-review trail. Warnings from the
// validation pass are stored alongside the values so reviewers see
// out-of-range flags without revalidating.
type TestResult struct {
	ID           uuid.UUID              `db:"id" json:"id"`
	AssignmentID uuid.UUID              `db:"assignment_id" json:"assignment_id"`
	Values       map[string]interface{} `db:"values" json:"values"`
	Warnings     []string               `db:"warnings" json:"warnings,omitempty"`
	SubmittedBy  uuid.UUID              `db:"submitted_by" json:"submitted_by"`
	SubmittedAt  time.Time              `db:"submitted_at" json:"submitted_at"`
	ReviewedBy   *uuid.UUID             `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time             `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNotes  *string                `db:"review_notes" json:"review_notes,omitempty"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
}
