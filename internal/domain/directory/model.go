package directory

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctors table. Patients only ever see doctors that are
// both approved by an administrator and currently active.
type Doctor struct {
	ID              uuid.UUID `db:"id" json:"id"`
	FullName        string    `db:"full_name" json:"full_name"`
	Specialization  string    `db:"specialization" json:"specialization"`
	ConsultationFee float64   `db:"consultation_fee" json:"consultation_fee"`
	IsApproved      bool      `db:"is_approved" json:"is_approved"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Eligible reports whether the doctor may be selected for new bookings.
// This is the single source of truth for that rule.
func (d *Doctor) Eligible() bool {
	return d.IsApproved && d.IsActive
}
