package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a booking. Transitions are restricted to
// the table in the service layer; rejected, completed and cancelled are
// terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Label returns the human-readable form shown in client badges. Total over
// the valid value set; unknown values fall through to the raw string.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusRejected:
		return "Rejected"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// AppointmentType distinguishes video consultations from in-person visits.
type AppointmentType string

const (
	TypeVideoCall AppointmentType = "videocall"
	TypeInPerson  AppointmentType = "inperson"
)

func (t AppointmentType) Valid() bool {
	return t == TypeVideoCall || t == TypeInPerson
}

func (t AppointmentType) Label() string {
	switch t {
	case TypeVideoCall:
		return "Video Call"
	case TypeInPerson:
		return "In Person"
	}
	return string(t)
}

// Booking maps to the bookings table: one requested consultation between
// exactly one patient and one doctor. PatientID and DoctorID are set at
// creation and never reassigned. Dates and times are naive local strings in
// canonical form ("2006-01-02" and "15:04").
type Booking struct {
	ID                    uuid.UUID       `db:"id" json:"id"`
	PatientID             uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID              uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	AppointmentType       AppointmentType `db:"appointment_type" json:"appointment_type"`
	AppointmentDate       string          `db:"appointment_date" json:"appointment_date"`
	AppointmentTime       string          `db:"appointment_time" json:"appointment_time"`
	FullName              string          `db:"full_name" json:"full_name"`
	Email                 string          `db:"email" json:"email"`
	PhoneNumber           string          `db:"phone_number" json:"phone_number"`
	DateOfBirth           string          `db:"date_of_birth" json:"date_of_birth"`
	ReasonForConsultation string          `db:"reason_for_consultation" json:"reason_for_consultation"`
	CurrentMedications    *string         `db:"current_medications" json:"current_medications,omitempty"`
	KnownAllergies        *string         `db:"known_allergies" json:"known_allergies,omitempty"`
	Status                Status          `db:"status" json:"status"`
	DoctorResponse        *string         `db:"doctor_response" json:"doctor_response,omitempty"`
	MeetingLink           *string         `db:"meeting_link" json:"meeting_link,omitempty"`
	CancellationReason    *string         `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt             time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time       `db:"updated_at" json:"updated_at"`
}
