package identity

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. The id equals the subject of the
// authentication token; credentials live with the authentication
// collaborator, not here.
type Patient struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Email       string    `db:"email" json:"email"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	DateOfBirth string    `db:"date_of_birth" json:"date_of_birth"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
