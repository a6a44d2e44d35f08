package technician

import (
	"time"

	"github.com/google/uuid"
)

// Technician maps to the technician table: the subset of a staff user
// relevant to work assignment. AdminRole is the capability tag matched
// against a test's admin_role; CreatedAt breaks workload ties.
type Technician struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	AdminRole string    `db:"admin_role" json:"admin_role"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RankedTechnician pairs a candidate with the workload the selector
// computed for it, for preview and manual-assignment UIs.
type RankedTechnician struct {
	Technician     *Technician `json:"technician"`
	ActiveWorkload int         `json:"active_workload"`
}
