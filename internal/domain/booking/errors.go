package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the booking id does not exist.
	ErrNotFound = errors.New("booking not found")

	// ErrForbidden indicates the caller is not the owning patient or doctor
	// for the requested operation.
	ErrForbidden = errors.New("not permitted for this caller")

	// ErrInvalidTransition indicates the requested transition is not legal
	// from the booking's current status. The booking is left unchanged; the
	// caller must re-read current state.
	ErrInvalidTransition = errors.New("transition not permitted from current status")

	// ErrStoreUnavailable indicates the booking store failed. Transient;
	// safe to retry since transitions are all-or-nothing.
	ErrStoreUnavailable = errors.New("booking store unavailable")

	// ErrSlotTaken is returned by the store when an insert loses the race
	// for a doctor's slot to a concurrent booking.
	ErrSlotTaken = errors.New("slot already booked")
)

// ValidationError carries every failed check so the client can show all
// problems at once. Error() surfaces only the first reason as the primary
// user-facing message.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return "invalid booking request"
	}
	return e.Reasons[0]
}

func (e *ValidationError) All() string {
	return strings.Join(e.Reasons, "; ")
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
