package booking

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Transition writes b's mutable fields (status, doctor_response,
	// meeting_link, cancellation_reason) only if the stored status still
	// equals from. Returns false without error when another writer got
	// there first; the booking is left unchanged in that case.
	Transition(ctx context.Context, b *Booking, from Status) (bool, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID, status *Status, limit, offset int) ([]*Booking, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, status *Status, limit, offset int) ([]*Booking, int, error)

	CountByStatusForPatient(ctx context.Context, patientID uuid.UUID) (map[Status]int, error)
	CountByStatusForDoctor(ctx context.Context, doctorID uuid.UUID) (map[Status]int, error)

	// SlotTaken reports whether a live booking (any status other than
	// rejected or cancelled) already holds the doctor's slot.
	SlotTaken(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (bool, error)
}
